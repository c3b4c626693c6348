package library

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Kind names a persistence backend.
type Kind string

const (
	KindCSV    Kind = "csv"
	KindSerial Kind = "serial"
)

// Kinds lists every supported backend kind.
func Kinds() []Kind { return []Kind{KindCSV, KindSerial} }

func kindList() string {
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, strings.ToUpper(string(k)))
	}
	return strings.Join(names, ", ")
}

// ParseKind resolves a case-insensitive token to a Kind.
func ParseKind(token string) (Kind, error) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(token)))
	for _, k := range Kinds() {
		if k == normalized {
			return k, nil
		}
	}
	return "", &UnsupportedBackendError{Token: token}
}

// NewBackend constructs the backend for kind.
func NewBackend(kind Kind, opts StorageOptions) (Backend, error) {
	switch kind {
	case KindCSV:
		return NewTextBackend(opts), nil
	case KindSerial:
		return NewSnapshotBackend(opts), nil
	default:
		return nil, &UnsupportedBackendError{Token: string(kind)}
	}
}

// SelectBackend resolves token and constructs the matching backend. An
// unknown token fails immediately.
func SelectBackend(token string, opts StorageOptions) (Backend, Kind, error) {
	kind, err := ParseKind(token)
	if err != nil {
		return nil, "", err
	}
	b, err := NewBackend(kind, opts)
	if err != nil {
		return nil, "", err
	}
	return b, kind, nil
}

// PromptBackend asks on w for a backend kind until sc yields a supported
// token. It only fails when input runs out.
func PromptBackend(sc *bufio.Scanner, w io.Writer, opts StorageOptions) (Backend, Kind, error) {
	fmt.Fprintln(w, "Choose data format:")
	for {
		for _, k := range Kinds() {
			fmt.Fprintf(w, "  %s\n", strings.ToUpper(string(k)))
		}
		fmt.Fprint(w, "> ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, "", fmt.Errorf("read backend choice: %w", err)
			}
			return nil, "", fmt.Errorf("read backend choice: %w", io.ErrUnexpectedEOF)
		}
		b, kind, err := SelectBackend(sc.Text(), opts)
		if err == nil {
			return b, kind, nil
		}
		fmt.Fprintf(w, "%v. Choose again.\n", err)
	}
}
