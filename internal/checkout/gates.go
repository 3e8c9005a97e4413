package checkout

import "fmt"

// Reason identifies which gate rejected a checkout attempt. Callers branch on
// the enum to point the UI at the exact control to fix.
type Reason string

const (
	// ReasonOutOfStock fires when a line's effective stock no longer covers it.
	ReasonOutOfStock Reason = "OUT_OF_STOCK"
	// ReasonInvalidContactField fires when guest contact validation fails.
	ReasonInvalidContactField Reason = "INVALID_CONTACT_FIELD"
	// ReasonMissingShippingSelection fires when courier or rate is unchosen.
	ReasonMissingShippingSelection Reason = "MISSING_SHIPPING_SELECTION"
	// ReasonEmptyCart fires when there is nothing to check out.
	ReasonEmptyCart Reason = "EMPTY_CART"
	// ReasonRemoteFailure marks a terminal collaborator failure for this attempt.
	ReasonRemoteFailure Reason = "REMOTE_FAILURE"
	// ReasonSuperseded marks a submission whose session moved on before the
	// collaborator answered; the late response must not be applied.
	ReasonSuperseded Reason = "SUBMISSION_SUPERSEDED"
)

// FieldError names one offending contact field.
type FieldError struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// GateError is a structured checkout rejection.
type GateError struct {
	Reason  Reason       `json:"reason"`
	LineKey string       `json:"lineKey,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
	Err     error        `json:"-"`
}

func (e *GateError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.LineKey != "":
		return fmt.Sprintf("checkout: %s (line %s)", e.Reason, e.LineKey)
	case len(e.Fields) > 0:
		return fmt.Sprintf("checkout: %s (%d fields)", e.Reason, len(e.Fields))
	case e.Err != nil:
		return fmt.Sprintf("checkout: %s: %v", e.Reason, e.Err)
	default:
		return fmt.Sprintf("checkout: %s", e.Reason)
	}
}

func (e *GateError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NoticeKind labels an auto-resolved condition surfaced to the caller.
type NoticeKind string

// NoticePaymentDowngraded signals COD was switched to automatic payment
// because the international tariff excludes cash on delivery.
const NoticePaymentDowngraded NoticeKind = "PAYMENT_DOWNGRADED"

// Notice describes a non-fatal adjustment made during assembly.
type Notice struct {
	Kind   NoticeKind `json:"kind"`
	Detail string     `json:"detail"`
}
