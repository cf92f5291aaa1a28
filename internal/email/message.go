// Package email defines the core email data model used throughout the mail sink.
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
)

// Address is a mail participant. Only Address is significant for folder
// placement; Name is cosmetic.
type Address struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// NewAddress returns an Address for a bare address string with an empty name.
func NewAddress(addr string) Address {
	return Address{Address: addr}
}

// ParseAddress accepts either "Display Name <user@example.com>" or a bare
// address. Input that net/mail cannot parse is kept verbatim as the address
// so that validation can reject it later.
func ParseAddress(s string) Address {
	s = strings.TrimSpace(s)
	parsed, err := mail.ParseAddress(s)
	if err != nil {
		return NewAddress(s)
	}
	return Address{Name: parsed.Name, Address: parsed.Address}
}

// String renders the address in header form.
func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Address)
}

// UnmarshalJSON accepts a bare JSON string or a {"name","address"} object.
func (a *Address) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = NewAddress(s)
		return nil
	}

	type plain Address
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("address must be a string or an object: %w", err)
	}
	*a = Address(p)
	return nil
}

// Recipients is the normalized form of a message's "to" field.
type Recipients []Address

// To builds a recipient list from bare address strings.
func To(addrs ...string) Recipients {
	r := make(Recipients, 0, len(addrs))
	for _, a := range addrs {
		r = append(r, NewAddress(a))
	}
	return r
}

// UnmarshalJSON accepts a single string or object, or an array of either.
func (r *Recipients) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []Address
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*r = list
		return nil
	}

	var one Address
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*r = Recipients{one}
	return nil
}

// Message is a single outgoing email as handed to a provider.
type Message struct {
	From      Address    `json:"from"`
	To        Recipients `json:"to"`
	Subject   string     `json:"subject,omitempty"`
	Text      string     `json:"text,omitempty"`
	HTML      string     `json:"html,omitempty"`
	MessageID string     `json:"messageId,omitempty"`
	Simulate  *Simulate  `json:"simulate,omitempty"`
}

// Simulate requests an artificial delay and, optionally, a synthetic failure
// instead of real I/O.
type Simulate struct {
	DelayMs int    `json:"delayMs,omitempty"`
	Error   *Error `json:"error,omitempty"`
}
