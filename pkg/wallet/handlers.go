package wallet

import (
	"encoding/json"

	"github.com/cuemby/secwall/pkg/config"
	"github.com/cuemby/secwall/pkg/document"
	"github.com/cuemby/secwall/pkg/log"
	"github.com/cuemby/secwall/pkg/notify"
)

func jsonStrings(items []string) string {
	buf, err := json.Marshal(items)
	if err != nil {
		panic(err)
	}
	return string(buf)
}

func (w *Wallet) handleGetPortfolioList(_ Request) *Response {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return ok(jsonStrings(w.cfg.PortfolioNames()))
}

func (w *Wallet) handleGetConsumerUsages(req Request) *Response {
	granted := w.cfg.GrantedUsages(req.Sender, config.Consumer)
	return ok(jsonStrings(grantedSorted(granted)))
}

func (w *Wallet) handleGetProducerUsages(req Request) *Response {
	granted := w.cfg.GrantedUsages(req.Sender, config.Producer)
	return ok(jsonStrings(grantedSorted(granted)))
}

// argFrames validates frame count, returning a BadCommandArgument failure
// when req carries fewer than min frames.
func argFrames(req Request, min int) *Error {
	if len(req.Frames) < min {
		return newError(ErrBadCommandArgument, "missing argument", nil)
	}
	return nil
}

func (w *Wallet) handleGetListWithSecret(req Request) *Response {
	if err := argFrames(req, 1); err != nil {
		return fail(err)
	}
	portfolioName := req.Frames[0]
	var usageFilter string
	if len(req.Frames) >= 2 {
		usageFilter = req.Frames[1]
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	p, aclErr := w.lookupPortfolio(portfolioName, false)
	if aclErr != nil {
		return fail(aclErr)
	}
	granted := w.cfg.GrantedUsages(req.Sender, config.Consumer)

	var out []document.Document
	for _, d := range p.GetAll() {
		if usageFilter != "" {
			if _, has := granted[usageFilter]; !has {
				continue
			}
			if !containsUsage(d.Usages(), usageFilter) {
				continue
			}
		} else if !intersects(d.Usages(), granted) {
			continue
		}
		out = append(out, d)
	}
	return ok(encodeDocList(out))
}

func (w *Wallet) handleGetListWithoutSecret(req Request) *Response {
	if err := argFrames(req, 1); err != nil {
		return fail(err)
	}
	portfolioName := req.Frames[0]
	var usageFilter string
	if len(req.Frames) >= 2 {
		usageFilter = req.Frames[1]
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	p, aclErr := w.lookupPortfolio(portfolioName, false)
	if aclErr != nil {
		return fail(aclErr)
	}
	granted := w.cfg.GrantedUsages(req.Sender, config.Producer)

	var out []document.Document
	for _, d := range p.GetAll() {
		if usageFilter != "" {
			if _, has := granted[usageFilter]; !has {
				continue
			}
			if !containsUsage(d.Usages(), usageFilter) {
				continue
			}
		} else if !intersects(d.Usages(), granted) {
			continue
		}
		out = append(out, document.Redact(d))
	}
	return ok(encodeDocList(out))
}

func containsUsage(usages []string, usage string) bool {
	for _, u := range usages {
		if u == usage {
			return true
		}
	}
	return false
}

func (w *Wallet) handleGetWithSecret(req Request) *Response {
	if err := argFrames(req, 2); err != nil {
		return fail(err)
	}
	portfolioName, id := req.Frames[0], req.Frames[1]

	w.mu.RLock()
	defer w.mu.RUnlock()

	p, aclErr := w.lookupPortfolio(portfolioName, false)
	if aclErr != nil {
		return fail(aclErr)
	}
	d, err := p.GetByID(id)
	if err != nil {
		return fail(newError(ErrDocumentDoNotExist, id, map[string]string{"docId": id}))
	}
	granted := w.cfg.GrantedUsages(req.Sender, config.Consumer)
	if !intersects(d.Usages(), granted) {
		return fail(newError(ErrDocumentDoNotExist, id, map[string]string{"docId": id}))
	}
	return ok(encodeDoc(d))
}

func (w *Wallet) handleGetWithoutSecret(req Request) *Response {
	if err := argFrames(req, 2); err != nil {
		return fail(err)
	}
	portfolioName, id := req.Frames[0], req.Frames[1]

	w.mu.RLock()
	defer w.mu.RUnlock()

	p, aclErr := w.lookupPortfolio(portfolioName, false)
	if aclErr != nil {
		return fail(aclErr)
	}
	d, err := p.GetByID(id)
	if err != nil {
		return fail(newError(ErrDocumentDoNotExist, id, map[string]string{"docId": id}))
	}
	granted := w.cfg.GrantedUsages(req.Sender, config.Producer)
	if !intersects(d.Usages(), granted) {
		return fail(newError(ErrDocumentDoNotExist, id, map[string]string{"docId": id}))
	}
	return ok(encodeDoc(document.Redact(d)))
}

func (w *Wallet) handleGetWithoutSecretByName(req Request) *Response {
	if err := argFrames(req, 2); err != nil {
		return fail(err)
	}
	portfolioName, name := req.Frames[0], req.Frames[1]

	w.mu.RLock()
	defer w.mu.RUnlock()

	p, aclErr := w.lookupPortfolio(portfolioName, false)
	if aclErr != nil {
		return fail(aclErr)
	}
	d, err := p.GetByName(name)
	if err != nil {
		return fail(newError(ErrNameDoesNotExist, name, map[string]string{"name": name}))
	}
	granted := w.cfg.GrantedUsages(req.Sender, config.Producer)
	if !intersects(d.Usages(), granted) {
		return fail(newError(ErrNameDoesNotExist, name, map[string]string{"name": name}))
	}
	return ok(encodeDoc(document.Redact(d)))
}

func (w *Wallet) handleGetWithSecretByName(req Request) *Response {
	if err := argFrames(req, 2); err != nil {
		return fail(err)
	}
	portfolioName, name := req.Frames[0], req.Frames[1]

	w.mu.RLock()
	defer w.mu.RUnlock()

	p, aclErr := w.lookupPortfolio(portfolioName, false)
	if aclErr != nil {
		return fail(aclErr)
	}
	d, err := p.GetByName(name)
	if err != nil {
		return fail(newError(ErrNameDoesNotExist, name, map[string]string{"name": name}))
	}
	granted := w.cfg.GrantedUsages(req.Sender, config.Consumer)
	if !intersects(d.Usages(), granted) {
		return fail(newError(ErrNameDoesNotExist, name, map[string]string{"name": name}))
	}
	return ok(encodeDoc(d))
}

func (w *Wallet) handleGetListWithoutSecretByIDs(req Request) *Response {
	if err := argFrames(req, 2); err != nil {
		return fail(err)
	}
	portfolioName := req.Frames[0]
	var ids []string
	if err := json.Unmarshal([]byte(req.Frames[1]), &ids); err != nil {
		return fail(newError(ErrProtocolError, "malformed id list", nil))
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	p, aclErr := w.lookupPortfolio(portfolioName, false)
	if aclErr != nil {
		return fail(aclErr)
	}
	granted := w.cfg.GrantedUsages(req.Sender, config.Producer)

	var out []document.Document
	for _, id := range ids {
		d, err := p.GetByID(id)
		if err != nil {
			continue // missing ids are silently dropped
		}
		if !intersects(d.Usages(), granted) {
			continue
		}
		out = append(out, document.Redact(d))
	}
	return ok(encodeDocList(out))
}

func (w *Wallet) handleCreate(req Request) *Response {
	if err := argFrames(req, 2); err != nil {
		return fail(err)
	}
	portfolioName := req.Frames[0]
	d, perr := parseIncomingDocument(req.Frames[1])
	if perr != nil {
		return fail(perr)
	}

	clientLog := log.WithClient(req.Sender)

	if usage := firstUnknownUsage(d.Usages(), w.cfg); usage != "" {
		clientLog.Warn().Str("usage", usage).Msg("create rejected: unknown usage")
		return fail(newError(ErrUnknownUsage, usage, map[string]string{"usage": usage}))
	}
	granted := w.cfg.GrantedUsages(req.Sender, config.Producer)
	if !allGranted(d.Usages(), granted) {
		clientLog.Warn().Msg("create rejected: usage not granted")
		return fail(newError(ErrIllegalAction, "usage not granted to this client", nil))
	}

	w.mu.Lock()
	p, aclErr := w.lookupPortfolio(portfolioName, true)
	if aclErr != nil {
		w.mu.Unlock()
		return fail(aclErr)
	}

	id, err := p.Insert(d, w.validator)
	if err != nil {
		w.mu.Unlock()
		return fail(translateDocumentError(err))
	}
	if err := w.persistLocked(); err != nil {
		w.mu.Unlock()
		log.WithPortfolio(portfolioName).Error().Err(err).Msg("failed to persist after create")
		return fail(newError(ErrUnknownError, err.Error(), nil))
	}
	created, _ := p.GetByID(id)
	seq := w.broker.NextSequence(portfolioName)
	w.mu.Unlock()

	log.WithDocument(id).Info().Str("portfolio", portfolioName).Msg("document created")
	w.broker.Publish(&notify.Notification{
		Action:    notify.Created,
		Portfolio: portfolioName,
		Sequence:  seq,
		New:       document.Redact(created),
	})
	return ok(id)
}

// firstUnknownUsage returns the first usage in usages that the
// configuration does not declare, or "" if all are known. spec.md I5
// requires this be rejected at write time with UnknownUsage (errorCode 6),
// distinct from IllegalAction (errorCode 7) for a known-but-ungranted usage.
func firstUnknownUsage(usages []string, cfg *config.Configuration) string {
	for _, u := range usages {
		if !cfg.IsKnownUsage(u) {
			return u
		}
	}
	return ""
}

func (w *Wallet) handleUpdate(req Request) *Response {
	if err := argFrames(req, 2); err != nil {
		return fail(err)
	}
	portfolioName := req.Frames[0]
	d, perr := parseIncomingDocument(req.Frames[1])
	if perr != nil {
		return fail(perr)
	}

	clientLog := log.WithClient(req.Sender)

	if usage := firstUnknownUsage(d.Usages(), w.cfg); usage != "" {
		clientLog.Warn().Str("usage", usage).Msg("update rejected: unknown usage")
		return fail(newError(ErrUnknownUsage, usage, map[string]string{"usage": usage}))
	}
	granted := w.cfg.GrantedUsages(req.Sender, config.Producer)
	if !allGranted(d.Usages(), granted) {
		clientLog.Warn().Msg("update rejected: usage not granted")
		return fail(newError(ErrIllegalAction, "usage not granted to this client", nil))
	}

	w.mu.Lock()
	p, aclErr := w.lookupPortfolio(portfolioName, true)
	if aclErr != nil {
		w.mu.Unlock()
		return fail(aclErr)
	}

	res, err := p.Update(d, w.validator)
	if err != nil {
		w.mu.Unlock()
		return fail(translateDocumentError(err))
	}
	if err := w.persistLocked(); err != nil {
		w.mu.Unlock()
		log.WithPortfolio(portfolioName).Error().Err(err).Msg("failed to persist after update")
		return fail(newError(ErrUnknownError, err.Error(), nil))
	}
	seq := w.broker.NextSequence(portfolioName)
	w.mu.Unlock()

	log.WithDocument(d.ID()).Info().Str("portfolio", portfolioName).Msg("document updated")
	w.broker.Publish(&notify.Notification{
		Action:           notify.Updated,
		Portfolio:        portfolioName,
		Sequence:         seq,
		Old:              document.Redact(res.Old),
		New:              document.Redact(res.New),
		NonSecretChanged: res.NonSecretChanged,
		SecretChanged:    res.SecretChanged,
	})
	return ok()
}

func (w *Wallet) handleDelete(req Request) *Response {
	if err := argFrames(req, 2); err != nil {
		return fail(err)
	}
	portfolioName, id := req.Frames[0], req.Frames[1]

	w.mu.Lock()
	p, aclErr := w.lookupPortfolio(portfolioName, true)
	if aclErr != nil {
		w.mu.Unlock()
		return fail(aclErr)
	}

	removed, err := p.Remove(id)
	if err != nil {
		w.mu.Unlock()
		return fail(translateDocumentError(err))
	}
	if err := w.persistLocked(); err != nil {
		w.mu.Unlock()
		log.WithPortfolio(portfolioName).Error().Err(err).Msg("failed to persist after delete")
		return fail(newError(ErrUnknownError, err.Error(), nil))
	}
	seq := w.broker.NextSequence(portfolioName)
	w.mu.Unlock()

	log.WithDocument(id).Info().Str("portfolio", portfolioName).Msg("document deleted")
	w.broker.Publish(&notify.Notification{
		Action:    notify.Deleted,
		Portfolio: portfolioName,
		Sequence:  seq,
		Old:       document.Redact(removed),
	})
	return ok()
}

func allGranted(usages []string, granted map[string]struct{}) bool {
	for _, u := range usages {
		if _, ok := granted[u]; !ok {
			return false
		}
	}
	return true
}

func (w *Wallet) handleGetPrivateReadableTagList(req Request) *Response {
	tags := w.cfg.ListTags(req.Sender, "r")
	return ok(encodeTagList(tags))
}

func (w *Wallet) handleGetEditableTagList(req Request) *Response {
	seen := make(map[string]config.TagDescription)
	for _, letter := range []string{"c", "u", "d"} {
		for _, td := range w.cfg.ListTags(req.Sender, letter) {
			seen[td.ID] = td
		}
	}
	tags := make([]config.TagDescription, 0, len(seen))
	for _, td := range seen {
		tags = append(tags, td)
	}
	return ok(encodeTagList(tags))
}

func encodeTagList(tags []config.TagDescription) string {
	buf, err := json.Marshal(tags)
	if err != nil {
		panic(err)
	}
	return string(buf)
}
