package wallet

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/cuemby/secwall/pkg/config"
	"github.com/cuemby/secwall/pkg/document"
	"github.com/cuemby/secwall/pkg/log"
	"github.com/cuemby/secwall/pkg/metrics"
	"github.com/cuemby/secwall/pkg/notify"
	"github.com/cuemby/secwall/pkg/portfolio"
	"github.com/cuemby/secwall/pkg/storage"
)

// Request is one incoming call: the client id the transport already
// authenticated, the command name, and its opaque argument frames
// (spec.md §4.5).
type Request struct {
	Sender  string
	Command string
	Frames  []string
}

// Response is what Dispatch produces: either a list of result frames, or
// an error. Encode renders it to the wire shape transports send back.
type Response struct {
	Frames []string
	Err    *Error
}

// Encode renders r as the wire protocol's reply frames: "OK" followed by
// result frames, or "ERROR" followed by the JSON error envelope.
func (r *Response) Encode() []string {
	if r.Err != nil {
		return []string{"ERROR", r.Err.wireJSON()}
	}
	return append([]string{"OK"}, r.Frames...)
}

func ok(frames ...string) *Response { return &Response{Frames: frames} }
func fail(err *Error) *Response     { return &Response{Err: err} }

// Wallet is the live, in-memory security wallet: one reader-writer lock
// guarding every portfolio, backed by a database file and wired to a
// notification broker. All methods are safe for concurrent use.
type Wallet struct {
	mu         sync.RWMutex
	portfolios map[string]*portfolio.Portfolio

	cfg       *config.Configuration
	validator document.CertValidator
	broker    *notify.Broker
	dbPath    string
}

// New loads the database at dbPath and builds a Wallet ready to dispatch
// requests. Every portfolio name declared in cfg gets an entry, empty if
// the database file did not have one yet.
func New(cfg *config.Configuration, dbPath string, validator document.CertValidator, broker *notify.Broker) (*Wallet, error) {
	db, err := storage.Load(dbPath, validator)
	if err != nil {
		return nil, err
	}

	w := &Wallet{
		portfolios: make(map[string]*portfolio.Portfolio),
		cfg:        cfg,
		validator:  validator,
		broker:     broker,
		dbPath:     dbPath,
	}
	for _, p := range db.Portfolios {
		w.portfolios[p.Name()] = p
	}
	for _, name := range cfg.PortfolioNames() {
		if _, ok := w.portfolios[name]; !ok {
			w.portfolios[name] = portfolio.New(name, nil)
		}
	}
	return w, nil
}

func (w *Wallet) persistLocked() error {
	names := make([]string, 0, len(w.portfolios))
	for n := range w.portfolios {
		names = append(names, n)
	}
	sort.Strings(names)

	dbPortfolios := make([]*portfolio.Portfolio, 0, len(names))
	for _, n := range names {
		dbPortfolios = append(dbPortfolios, w.portfolios[n])
	}

	timer := metrics.NewTimer()
	err := storage.Save(w.dbPath, &storage.Database{Version: storage.CurrentVersion, Portfolios: dbPortfolios})
	timer.ObserveDuration(metrics.PersistenceDuration)
	if err != nil {
		return err
	}

	w.updateDocumentGaugeLocked()
	return nil
}

// RefreshMetrics recomputes the documents-by-type-and-portfolio gauge from
// the current in-memory state. New does not call this itself; callers that
// hold a Wallet for a while before its first mutation (cmd/secwall's serve
// command) call it once at startup so /metrics is accurate immediately.
func (w *Wallet) RefreshMetrics() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	w.updateDocumentGaugeLocked()
}

func (w *Wallet) updateDocumentGaugeLocked() {
	metrics.DocumentsTotal.Reset()
	for name, p := range w.portfolios {
		counts := make(map[string]int)
		for _, d := range p.GetAll() {
			counts[d.Type()]++
		}
		for typ, n := range counts {
			metrics.DocumentsTotal.WithLabelValues(name, typ).Set(float64(n))
		}
	}
}

// Dispatch routes req to its command handler, enforcing the role check
// and, for every handler that touches documents, the usage-based ACL
// from spec.md §4.5.
func (w *Wallet) Dispatch(req Request) *Response {
	timer := metrics.NewTimer()
	resp := w.dispatch(req)
	timer.ObserveDurationVec(metrics.DispatchDuration, req.Command)

	outcome := "ok"
	if resp.Err != nil {
		outcome = "error"
	}
	metrics.DispatchRequestsTotal.WithLabelValues(req.Command, outcome).Inc()
	return resp
}

func (w *Wallet) dispatch(req Request) *Response {
	h, known := commands[req.Command]
	if !known {
		return fail(newError(ErrUnsupportedCommand, req.Command, nil))
	}

	isProducer := w.cfg.IsProducer(req.Sender)
	isConsumer := w.cfg.IsConsumer(req.Sender)
	if !isProducer && !isConsumer {
		return fail(newError(ErrUnknownClient, req.Sender, nil))
	}
	switch h.role {
	case config.Producer:
		if !isProducer {
			return fail(newError(ErrUnsupportedCommand, req.Command, nil))
		}
	case config.Consumer:
		if !isConsumer {
			return fail(newError(ErrUnsupportedCommand, req.Command, nil))
		}
	}

	return h.fn(w, req)
}

type handler struct {
	role config.Role
	fn   func(*Wallet, Request) *Response
}

var commands = map[string]handler{
	"GET_PORTFOLIO_LIST":             {"", (*Wallet).handleGetPortfolioList},
	"GET_CONSUMER_USAGES":            {config.Consumer, (*Wallet).handleGetConsumerUsages},
	"GET_PRODUCER_USAGES":            {config.Producer, (*Wallet).handleGetProducerUsages},
	"GET_LIST_WITH_SECRET":           {config.Consumer, (*Wallet).handleGetListWithSecret},
	"GET_LIST_WITHOUT_SECRET":        {config.Producer, (*Wallet).handleGetListWithoutSecret},
	"GET_WITH_SECRET":                {config.Consumer, (*Wallet).handleGetWithSecret},
	"GET_WITHOUT_SECRET":             {config.Producer, (*Wallet).handleGetWithoutSecret},
	"GET_WITHOUT_SECRET_BY_NAME":     {config.Producer, (*Wallet).handleGetWithoutSecretByName},
	"GET_WITH_SECRET_BY_NAME":        {config.Consumer, (*Wallet).handleGetWithSecretByName},
	"GET_LIST_WITHOUT_SECRET_BY_IDS": {config.Producer, (*Wallet).handleGetListWithoutSecretByIDs},
	"CREATE":                         {config.Producer, (*Wallet).handleCreate},
	"UPDATE":                         {config.Producer, (*Wallet).handleUpdate},
	"DELETE":                         {config.Producer, (*Wallet).handleDelete},
	"GET_PRIVATE_READABLE_TAG_LIST":  {config.Consumer, (*Wallet).handleGetPrivateReadableTagList},
	"GET_EDITABLE_TAG_LIST":          {config.Producer, (*Wallet).handleGetEditableTagList},
}

// --- helpers shared by handlers ---

func intersects(usages []string, granted map[string]struct{}) bool {
	for _, u := range usages {
		if _, ok := granted[u]; ok {
			return true
		}
	}
	return false
}

func grantedSorted(granted map[string]struct{}) []string {
	out := make([]string, 0, len(granted))
	for u := range granted {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// lookupPortfolio resolves name against the configuration's declared
// portfolio set. Under the write lock (allowCreate), a known name with no
// map entry yet gets one created and stored; under the read lock, it is
// simply treated as empty without mutating shared state.
func (w *Wallet) lookupPortfolio(name string, allowCreate bool) (*portfolio.Portfolio, *Error) {
	if !w.cfg.IsKnownPortfolio(name) {
		return nil, newError(ErrUnknownPortfolio, name, map[string]string{"portfolio": name})
	}
	p, exists := w.portfolios[name]
	if exists {
		return p, nil
	}
	p = portfolio.New(name, nil)
	if allowCreate {
		w.portfolios[name] = p
	}
	return p, nil
}

func encodeDoc(d document.Document) string {
	buf, err := json.Marshal(map[string]interface{}{
		document.KeyID:      d.ID(),
		document.KeyName:    d.Name(),
		document.KeyType:    d.Type(),
		document.KeyTags:    d.Tags(),
		document.KeyUsages:  d.Usages(),
		document.KeyPublic:  d.SerializePublic(),
		document.KeyPrivate: d.SerializePrivate(),
	})
	if err != nil {
		panic(err)
	}
	return string(buf)
}

func encodeDocList(docs []document.Document) string {
	items := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		items[i] = json.RawMessage(encodeDoc(d))
	}
	buf, err := json.Marshal(items)
	if err != nil {
		panic(err)
	}
	return string(buf)
}

func parseIncomingDocument(frame string) (document.Document, *Error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(frame), &raw); err != nil {
		return nil, newError(ErrProtocolError, "malformed document JSON", nil)
	}
	typ, _ := raw[document.KeyType].(string)
	d, err := document.New(typ)
	if err != nil {
		return nil, newError(ErrUnknownDocumentType, typ, map[string]string{"docType": typ})
	}

	if id, ok := raw[document.KeyID].(string); ok {
		d.SetID(id)
	}
	if name, ok := raw[document.KeyName].(string); ok {
		d.SetName(name)
	}
	if tags, ok := raw[document.KeyTags].([]interface{}); ok {
		d.SetTags(toStrings(tags))
	}
	if usages, ok := raw[document.KeyUsages].([]interface{}); ok {
		d.SetUsages(toStrings(usages))
	}

	priv, _ := raw[document.KeyPrivate].(map[string]interface{})
	if len(priv) > 0 {
		d.SetContainsPrivate(true)
		if err := d.UpdateFromPrivate(document.Fields(priv)); err != nil {
			return asInvalidDocumentFormat(err)
		}
	} else {
		d.SetContainsPrivate(false)
	}

	pub, _ := raw[document.KeyPublic].(map[string]interface{})
	if err := d.UpdateFromPublic(document.Fields(pub)); err != nil {
		return asInvalidDocumentFormat(err)
	}

	return d, nil
}

func asInvalidDocumentFormat(err error) (document.Document, *Error) {
	if ve, ok := err.(*document.ValidationError); ok {
		return nil, newError(ErrInvalidDocumentFormat, ve.Reason, map[string]string{"docField": ve.Field})
	}
	return nil, newError(ErrInvalidDocumentFormat, err.Error(), nil)
}

func toStrings(in []interface{}) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// translateDocumentError maps a document/portfolio error into the wire
// error envelope.
func translateDocumentError(err error) *Error {
	switch e := err.(type) {
	case *document.ValidationError:
		log.WithComponent("wallet").Warn().Str("docField", e.Field).Str("reason", e.Reason).Msg("document validation failed")
		return newError(ErrInvalidDocumentFormat, e.Reason, map[string]string{"docField": e.Field})
	case *document.UnknownTypeError:
		return newError(ErrUnknownDocumentType, e.Type, map[string]string{"docType": e.Type})
	case *portfolio.NameAlreadyExistsError:
		return newError(ErrNameAlreadyExists, e.Name, map[string]string{"name": e.Name})
	case *portfolio.DocumentDoNotExistError:
		return newError(ErrDocumentDoNotExist, e.ID, map[string]string{"docId": e.ID})
	case *portfolio.IllegalActionError:
		return newError(ErrIllegalAction, e.Reason, nil)
	default:
		log.Logger.Error().Err(err).Msg("unmapped wallet error")
		return newError(ErrUnknownError, err.Error(), nil)
	}
}
