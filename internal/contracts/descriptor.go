// Package contracts holds the static ABI descriptors of the contracts the
// bridge client talks to, and helpers to check them against compiled Solidity.
package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Kind tags an ABI entry.
type Kind string

const (
	KindFunction    Kind = "function"
	KindEvent       Kind = "event"
	KindConstructor Kind = "constructor"
)

// Mutability values accepted in Entry.StateMutability.
const (
	Pure       = "pure"
	View       = "view"
	NonPayable = "nonpayable"
	Payable    = "payable"
)

// Param is one typed parameter of a function, constructor or event.
type Param struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	InternalType string `json:"internalType,omitempty"`
	// Indexed is only meaningful for event parameters.
	Indexed bool `json:"indexed,omitempty"`
}

// Entry is a single member of a contract interface.
type Entry struct {
	Kind            Kind    `json:"type"`
	Name            string  `json:"name,omitempty"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs,omitempty"`
	StateMutability string  `json:"stateMutability,omitempty"`
	Anonymous       bool    `json:"anonymous,omitempty"`
}

// Signature returns the canonical signature of the entry, e.g. deposit(uint256).
// Constructors are rendered as constructor(...).
func (e Entry) Signature() string {
	var buf bytes.Buffer
	if e.Kind == KindConstructor {
		buf.WriteString("constructor")
	} else {
		buf.WriteString(e.Name)
	}
	buf.WriteByte('(')
	for i, p := range e.Inputs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(p.Type)
	}
	buf.WriteByte(')')
	return buf.String()
}

// Descriptor is the ordered list of members exposed by a contract.
// Descriptors are declared once at package level and never modified.
type Descriptor []Entry

// JSON renders the descriptor in the Solidity ABI JSON format.
func (d Descriptor) JSON() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal descriptor: %w", err)
	}
	return string(b), nil
}

// Parse converts the descriptor into a go-ethereum ABI usable for packing and
// unpacking calls.
func (d Descriptor) Parse() (abi.ABI, error) {
	raw, err := d.JSON()
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(bytes.NewReader([]byte(raw)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}
	return parsed, nil
}

// MustParse is like Parse but panics on error. It is meant for package-level
// initialization of descriptors that are known to be well formed.
func (d Descriptor) MustParse() abi.ABI {
	parsed, err := d.Parse()
	if err != nil {
		panic(err)
	}
	return parsed
}

// Lookup returns the entry with the given kind and name. The constructor is
// found with an empty name.
func (d Descriptor) Lookup(kind Kind, name string) (Entry, bool) {
	for _, e := range d {
		if e.Kind == kind && e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
