package contracts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrDescriptorMismatch is returned by Verify when a descriptor disagrees with
// the compiled contract interface.
var ErrDescriptorMismatch = errors.New("descriptor does not match compiled abi")

// GenerateAbiAndBin compiles a Solidity contract and returns its ABI and binary code or an error.
// Args:
//   - solPath: Path to the Solidity file to compile.
//   - contractName: Name of the contract to pick from the compiler output. When
//     empty, the first contract found is returned.
//
// Returns:
//   - contractBin: The binary code of the compiled contract.
//   - contractABI: The ABI of the compiled contract.
//   - err: An error if the compilation fails or if the file does not exist.
func GenerateAbiAndBin(solPath string, contractName string) (
	contractBin string,
	contractABI string,
	err error) {

	if _, err := exec.LookPath("solc"); err != nil {
		return "", "", fmt.Errorf("solc not found in PATH: %w", err)
	}

	if _, err := os.Stat(solPath); err != nil {
		return "", "", fmt.Errorf("file not found: %w", err)
	}

	solcCmd := exec.Command("solc", "--combined-json", "abi,bin", "--metadata-hash", "none", solPath)
	output, err := solcCmd.CombinedOutput()
	if err != nil {
		return "", "", fmt.Errorf("solc failed: %w\nOutput: %s", err, string(output))
	}

	var combined struct {
		Contracts map[string]struct {
			ABI json.RawMessage `json:"abi"`
			Bin string          `json:"bin"`
		} `json:"contracts"`
	}
	if err := json.Unmarshal(output, &combined); err != nil {
		return "", "", fmt.Errorf("unmarshal solc output: %w", err)
	}

	// solc keys contracts as "<path>:<name>" where path may be absolute, so
	// match on the name suffix only.
	keys := make([]string, 0, len(combined.Contracts))
	for k := range combined.Contracts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if contractName == "" || strings.HasSuffix(k, ":"+contractName) {
			c := combined.Contracts[k]
			return c.Bin, string(c.ABI), nil
		}
	}

	return "", "", fmt.Errorf("compiled contract not found")
}

// Verify compares the descriptor with an ABI JSON document, typically the
// output of GenerateAbiAndBin. Every descriptor entry must exist in the
// compiled ABI with identical parameter names, order, types, indexed flags and
// mutability. Extra members in the compiled ABI are allowed.
func Verify(d Descriptor, compiledABI string) error {
	compiled, err := abi.JSON(bytes.NewReader([]byte(compiledABI)))
	if err != nil {
		return fmt.Errorf("parse compiled abi: %w", err)
	}

	var problems []string
	for _, e := range d {
		if msg := verifyEntry(compiled, e); msg != "" {
			problems = append(problems, msg)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrDescriptorMismatch, strings.Join(problems, "; "))
	}
	return nil
}

func verifyEntry(compiled abi.ABI, e Entry) string {
	switch e.Kind {
	case KindConstructor:
		// abi.ABI has no presence flag for the constructor; a missing one
		// shows up as an empty argument list.
		return compareArgs("constructor", e.Inputs, compiled.Constructor.Inputs)
	case KindFunction:
		m, ok := compiled.Methods[e.Name]
		if !ok {
			return fmt.Sprintf("function %s missing", e.Name)
		}
		if m.StateMutability != e.StateMutability {
			return fmt.Sprintf("function %s: mutability %s, compiled %s", e.Name, e.StateMutability, m.StateMutability)
		}
		if msg := compareArgs(e.Name+" inputs", e.Inputs, m.Inputs); msg != "" {
			return msg
		}
		return compareArgs(e.Name+" outputs", e.Outputs, m.Outputs)
	case KindEvent:
		ev, ok := compiled.Events[e.Name]
		if !ok {
			return fmt.Sprintf("event %s missing", e.Name)
		}
		return compareArgs("event "+e.Name, e.Inputs, ev.Inputs)
	default:
		return fmt.Sprintf("unknown kind %q", e.Kind)
	}
}

func compareArgs(where string, want []Param, got abi.Arguments) string {
	if len(want) != len(got) {
		return fmt.Sprintf("%s: %d params, compiled %d", where, len(want), len(got))
	}
	for i, p := range want {
		g := got[i]
		if p.Type != g.Type.String() {
			return fmt.Sprintf("%s[%d]: type %s, compiled %s", where, i, p.Type, g.Type.String())
		}
		if p.Name != g.Name {
			return fmt.Sprintf("%s[%d]: name %q, compiled %q", where, i, p.Name, g.Name)
		}
		if p.Indexed != g.Indexed {
			return fmt.Sprintf("%s[%d]: indexed %t, compiled %t", where, i, p.Indexed, g.Indexed)
		}
	}
	return ""
}
