package client

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/secwall/pkg/document"
	"github.com/cuemby/secwall/pkg/wallet"
)

// Requester is anything that can dispatch a wallet command. *wallet.Wallet
// satisfies this directly for in-process callers; a gRPC or ZeroMQ
// transport client would implement it the same way for remote callers.
type Requester interface {
	Dispatch(req wallet.Request) *wallet.Response
}

// ProducerAccessor is the producer-role view of the wallet: it may write
// documents and read them back redacted, but never read secrets.
type ProducerAccessor struct {
	ClientID string
	req      Requester
}

// ConsumerAccessor is the consumer-role view of the wallet: read-only,
// but sees secrets in full.
type ConsumerAccessor struct {
	ClientID string
	req      Requester
}

func NewProducerAccessor(clientID string, req Requester) *ProducerAccessor {
	return &ProducerAccessor{ClientID: clientID, req: req}
}

func NewConsumerAccessor(clientID string, req Requester) *ConsumerAccessor {
	return &ConsumerAccessor{ClientID: clientID, req: req}
}

// Error wraps a failed wallet dispatch so callers can inspect the
// numeric code without importing pkg/wallet themselves.
type Error struct {
	Code  int
	What  string
	Extra map[string]string
}

func (e *Error) Error() string {
	if e.What != "" {
		return fmt.Sprintf("secwall: code %d: %s", e.Code, e.What)
	}
	return fmt.Sprintf("secwall: code %d", e.Code)
}

func asError(err *wallet.Error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: err.Code, What: err.What, Extra: err.Extra}
}

func dispatch(req Requester, r wallet.Request) ([]string, error) {
	resp := req.Dispatch(r)
	if resp.Err != nil {
		return nil, asError(resp.Err)
	}
	return resp.Frames, nil
}

func decodeStringList(frame string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(frame), &out); err != nil {
		return nil, fmt.Errorf("decoding string list: %w", err)
	}
	return out, nil
}

func decodeTagList(frame string) ([]TagDescription, error) {
	var out []TagDescription
	if err := json.Unmarshal([]byte(frame), &out); err != nil {
		return nil, fmt.Errorf("decoding tag list: %w", err)
	}
	return out, nil
}

// TagDescription mirrors config.TagDescription's exported shape without
// requiring callers to import pkg/config.
type TagDescription struct {
	ID          string `json:"ID"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// --- document wire encode/decode, mirroring pkg/wallet's internal frame shape ---

func marshalDocument(d document.Document) string {
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

func unmarshalDocument(frame string) (document.Document, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(frame), &raw); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	typ, _ := raw[document.KeyType].(string)
	d, err := document.New(typ)
	if err != nil {
		return nil, err
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
	pub, _ := raw[document.KeyPublic].(map[string]interface{})
	if err := d.UpdateFromPublic(document.Fields(pub)); err != nil {
		return nil, err
	}
	priv, _ := raw[document.KeyPrivate].(map[string]interface{})
	if len(priv) > 0 {
		d.SetContainsPrivate(true)
		if err := d.UpdateFromPrivate(document.Fields(priv)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func unmarshalDocumentList(frame string) ([]document.Document, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(frame), &raw); err != nil {
		return nil, fmt.Errorf("decoding document list: %w", err)
	}
	out := make([]document.Document, 0, len(raw))
	for _, r := range raw {
		d, err := unmarshalDocument(string(r))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
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

// --- producer methods ---

func (a *ProducerAccessor) ListPortfolios() ([]string, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_PORTFOLIO_LIST"})
	if err != nil {
		return nil, err
	}
	return decodeStringList(frames[0])
}

func (a *ProducerAccessor) Usages() ([]string, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_PRODUCER_USAGES"})
	if err != nil {
		return nil, err
	}
	return decodeStringList(frames[0])
}

func (a *ProducerAccessor) ListWithoutSecret(portfolioName, usage string) ([]document.Document, error) {
	req := wallet.Request{Sender: a.ClientID, Command: "GET_LIST_WITHOUT_SECRET", Frames: []string{portfolioName}}
	if usage != "" {
		req.Frames = append(req.Frames, usage)
	}
	frames, err := dispatch(a.req, req)
	if err != nil {
		return nil, err
	}
	return unmarshalDocumentList(frames[0])
}

func (a *ProducerAccessor) GetWithoutSecret(portfolioName, id string) (document.Document, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_WITHOUT_SECRET", Frames: []string{portfolioName, id}})
	if err != nil {
		return nil, err
	}
	return unmarshalDocument(frames[0])
}

func (a *ProducerAccessor) GetWithoutSecretByName(portfolioName, name string) (document.Document, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_WITHOUT_SECRET_BY_NAME", Frames: []string{portfolioName, name}})
	if err != nil {
		return nil, err
	}
	return unmarshalDocument(frames[0])
}

// ListWithoutSecretByIDs is the bulk accessor call exercising
// GET_LIST_WITHOUT_SECRET_BY_IDS; missing ids are silently dropped by the
// wallet, not reported as an error.
func (a *ProducerAccessor) ListWithoutSecretByIDs(portfolioName string, ids []string) ([]document.Document, error) {
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_LIST_WITHOUT_SECRET_BY_IDS", Frames: []string{portfolioName, string(idsJSON)}})
	if err != nil {
		return nil, err
	}
	return unmarshalDocumentList(frames[0])
}

func (a *ProducerAccessor) Create(portfolioName string, d document.Document) (string, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "CREATE", Frames: []string{portfolioName, marshalDocument(d)}})
	if err != nil {
		return "", err
	}
	return frames[0], nil
}

func (a *ProducerAccessor) Update(portfolioName string, d document.Document) error {
	_, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "UPDATE", Frames: []string{portfolioName, marshalDocument(d)}})
	return err
}

func (a *ProducerAccessor) Delete(portfolioName, id string) error {
	_, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "DELETE", Frames: []string{portfolioName, id}})
	return err
}

func (a *ProducerAccessor) EditableTags() ([]TagDescription, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_EDITABLE_TAG_LIST"})
	if err != nil {
		return nil, err
	}
	return decodeTagList(frames[0])
}

// --- consumer methods ---

func (a *ConsumerAccessor) ListPortfolios() ([]string, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_PORTFOLIO_LIST"})
	if err != nil {
		return nil, err
	}
	return decodeStringList(frames[0])
}

func (a *ConsumerAccessor) Usages() ([]string, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_CONSUMER_USAGES"})
	if err != nil {
		return nil, err
	}
	return decodeStringList(frames[0])
}

func (a *ConsumerAccessor) ListWithSecret(portfolioName, usage string) ([]document.Document, error) {
	req := wallet.Request{Sender: a.ClientID, Command: "GET_LIST_WITH_SECRET", Frames: []string{portfolioName}}
	if usage != "" {
		req.Frames = append(req.Frames, usage)
	}
	frames, err := dispatch(a.req, req)
	if err != nil {
		return nil, err
	}
	return unmarshalDocumentList(frames[0])
}

func (a *ConsumerAccessor) GetWithSecret(portfolioName, id string) (document.Document, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_WITH_SECRET", Frames: []string{portfolioName, id}})
	if err != nil {
		return nil, err
	}
	return unmarshalDocument(frames[0])
}

func (a *ConsumerAccessor) GetWithSecretByName(portfolioName, name string) (document.Document, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_WITH_SECRET_BY_NAME", Frames: []string{portfolioName, name}})
	if err != nil {
		return nil, err
	}
	return unmarshalDocument(frames[0])
}

func (a *ConsumerAccessor) PrivateReadableTags() ([]TagDescription, error) {
	frames, err := dispatch(a.req, wallet.Request{Sender: a.ClientID, Command: "GET_PRIVATE_READABLE_TAG_LIST"})
	if err != nil {
		return nil, err
	}
	return decodeTagList(frames[0])
}
