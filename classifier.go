package postboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-postboard/client"
	"github.com/goliatone/go-print"
)

// DefaultDiagnosticBodyLimit caps the response body kept on unexpected errors.
const DefaultDiagnosticBodyLimit = 4096

// Classifier turns transport failures and non 2xx responses into
// OperationError values. Classification is total: every input maps to
// exactly one Kind.
type Classifier struct {
	logger    Logger
	bodyLimit int
}

// ClassifierOption customizes a Classifier.
type ClassifierOption func(*Classifier)

// WithClassifierLogger sets the logger used for unexpected failures.
func WithClassifierLogger(logger Logger) ClassifierOption {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDiagnosticBodyLimit overrides how many body bytes are retained.
func WithDiagnosticBodyLimit(limit int) ClassifierOption {
	return func(c *Classifier) {
		if limit > 0 {
			c.bodyLimit = limit
		}
	}
}

// NewClassifier creates a Classifier.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		logger:    noopLogger{},
		bodyLimit: DefaultDiagnosticBodyLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Classify dispatches on the shape of err. A nil error yields nil.
func (c *Classifier) Classify(op string, err error) *OperationError {
	if err == nil {
		return nil
	}

	if opErr, ok := AsOperationError(err); ok {
		return opErr
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Response != nil {
		return c.ClassifyResponse(op, statusErr.Response)
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return c.ClassifyDecode(op, decodeErr.Response, decodeErr.Err)
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.ClassifyValidation(op, verrs)
	}

	if isNetworkError(err) {
		return c.ClassifyTransport(op, err)
	}

	opErr := &OperationError{
		Kind:      KindUnexpected,
		Messages:  []string{MsgUnexpectedError},
		Operation: op,
		Cause:     err,
	}
	c.logUnexpected(opErr)
	return opErr
}

// ClassifyResponse classifies a response that was received. 2xx responses
// yield nil.
func (c *Classifier) ClassifyResponse(op string, resp *client.Response) *OperationError {
	if resp == nil {
		return c.ClassifyTransport(op, errors.New("no response received"))
	}
	if resp.OK() {
		return nil
	}

	opErr := &OperationError{
		Status:    resp.StatusCode,
		Operation: op,
		RequestID: resp.RequestID,
		Cause:     fmt.Errorf("%s %s: %s", resp.Method, resp.URL, statusText(resp)),
	}

	switch resp.StatusCode {
	case 400:
		opErr.Kind = KindValidation
		opErr.Messages = validationMessages(resp.Body)
		if len(opErr.Messages) == 0 {
			opErr.Messages = []string{MsgValidationFailed}
			opErr.Body = c.truncate(resp.Text())
		}
	case 401:
		opErr.Kind = KindUnauthorized
		opErr.Messages = []string{MsgSessionExpired}
	case 404:
		opErr.Kind = KindNotFound
		opErr.Messages = []string{MsgNotFound}
	default:
		opErr.Kind = KindUnexpected
		opErr.Messages = []string{MsgUnexpectedError}
		opErr.Body = c.truncate(resp.Text())
		c.logUnexpected(opErr)
	}

	return opErr
}

// ClassifyTransport classifies a failure where no response was received.
func (c *Classifier) ClassifyTransport(op string, err error) *OperationError {
	opErr := &OperationError{
		Kind:      KindNetwork,
		Messages:  []string{MsgNetworkError},
		Operation: op,
		Cause:     err,
	}

	var terr *client.TransportError
	if errors.As(err, &terr) {
		opErr.RequestID = terr.RequestID
	}

	c.logger.Warn("request did not complete", "operation", op, "error", err)
	return opErr
}

// ClassifyDecode classifies a successful response whose body could not be
// decoded into the expected shape.
func (c *Classifier) ClassifyDecode(op string, resp *client.Response, err error) *OperationError {
	opErr := &OperationError{
		Kind:      KindUnexpected,
		Messages:  []string{MsgUnexpectedError},
		Operation: op,
		Cause:     err,
	}
	if resp != nil {
		opErr.Status = resp.StatusCode
		opErr.Body = c.truncate(resp.Text())
		opErr.RequestID = resp.RequestID
	}
	c.logUnexpected(opErr)
	return opErr
}

// ClassifyValidation classifies local input validation failures. Messages
// are ordered by field name.
func (c *Classifier) ClassifyValidation(op string, err error) *OperationError {
	opErr := &OperationError{
		Kind:      KindValidation,
		Operation: op,
		Cause:     err,
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for field := range verrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			if verrs[field] == nil {
				continue
			}
			opErr.Messages = append(opErr.Messages, fmt.Sprintf("%s: %s", field, verrs[field].Error()))
		}
	} else if err != nil {
		opErr.Messages = []string{err.Error()}
	}

	if len(opErr.Messages) == 0 {
		opErr.Messages = []string{MsgValidationFailed}
	}
	return opErr
}

func (c *Classifier) truncate(body string) string {
	if c.bodyLimit > 0 && len(body) > c.bodyLimit {
		return body[:c.bodyLimit]
	}
	return body
}

func (c *Classifier) logUnexpected(opErr *OperationError) {
	args := []any{
		"operation", opErr.Operation,
		"status", opErr.Status,
		"error", opErr.Rich(),
	}
	if opErr.Body != "" {
		args = append(args, "body", diagnosticBody(opErr.Body))
	}
	c.logger.Error("unexpected failure", args...)
}

func diagnosticBody(body string) string {
	raw := json.RawMessage(body)
	if json.Valid(raw) {
		return print.MaybePrettyJSON(raw)
	}
	return body
}

// validationMessages reads the 400 body. It accepts a JSON array of strings
// or an array of {field, message} objects and preserves order.
func validationMessages(body []byte) []string {
	var texts []string
	if err := json.Unmarshal(body, &texts); err == nil {
		messages := texts[:0]
		for _, text := range texts {
			if text != "" {
				messages = append(messages, text)
			}
		}
		return messages
	}

	var fields []struct {
		Field          string `json:"field"`
		Message        string `json:"message"`
		DefaultMessage string `json:"defaultMessage"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}

	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		msg := f.Message
		if msg == "" {
			msg = f.DefaultMessage
		}
		if msg == "" {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

func isNetworkError(err error) bool {
	var terr *client.TransportError
	if errors.As(err, &terr) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func statusText(resp *client.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return strconv.Itoa(resp.StatusCode)
}
