// Package challenge parses EIP-4361 (Sign-In with Ethereum) messages and
// verifies their EIP-191 personal_sign signatures.
package challenge

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"invitegate/pkg/domain"
)

const (
	headerSuffix = " wants you to sign in with your Ethereum account:"

	tagURI        = "URI: "
	tagVersion    = "Version: "
	tagChainID    = "Chain ID: "
	tagNonce      = "Nonce: "
	tagIssuedAt   = "Issued At: "
	tagExpiration = "Expiration Time: "
	tagNotBefore  = "Not Before: "
	tagRequestID  = "Request ID: "
	tagResources  = "Resources:"

	minNonceLength = 8
)

// Message is a parsed SIWE message.
type Message struct {
	Domain         string
	Address        common.Address
	Statement      string
	URI            string
	Version        string
	ChainID        domain.ChainID
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime *time.Time
	NotBefore      *time.Time
	RequestID      string
	Resources      []string
}

type lineReader struct {
	lines []string
	pos   int
}

func (r *lineReader) done() bool { return r.pos >= len(r.lines) }

func (r *lineReader) peek() string {
	if r.done() {
		return ""
	}
	return r.lines[r.pos]
}

func (r *lineReader) next() (string, bool) {
	if r.done() {
		return "", false
	}
	line := r.lines[r.pos]
	r.pos++
	return line, true
}

func (r *lineReader) skipBlank() {
	for !r.done() && r.lines[r.pos] == "" {
		r.pos++
	}
}

// field consumes a required "<tag><value>" line.
func (r *lineReader) field(tag string) (string, error) {
	line, ok := r.next()
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrMalformed, strings.TrimSpace(tag))
	}
	if !strings.HasPrefix(line, tag) {
		return "", fmt.Errorf("%w: expected %q, got %q", ErrMalformed, strings.TrimSpace(tag), line)
	}
	return strings.TrimPrefix(line, tag), nil
}

// optional consumes "<tag><value>" if it is the next line.
func (r *lineReader) optional(tag string) (string, bool) {
	if !strings.HasPrefix(r.peek(), tag) {
		return "", false
	}
	line, _ := r.next()
	return strings.TrimPrefix(line, tag), true
}

// ParseMessage parses a SIWE message. The statement is optional and blank
// lines around it are tolerated in the forms wallets commonly produce.
func ParseMessage(raw string) (*Message, error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimRight(raw, "\n")
	if raw == "" {
		return nil, fmt.Errorf("%w: empty message", ErrMalformed)
	}
	r := &lineReader{lines: strings.Split(raw, "\n")}
	msg := &Message{}

	header, _ := r.next()
	if !strings.HasSuffix(header, headerSuffix) {
		return nil, fmt.Errorf("%w: bad header", ErrMalformed)
	}
	msg.Domain = strings.TrimSuffix(header, headerSuffix)
	if msg.Domain == "" || strings.ContainsAny(msg.Domain, " \t") {
		return nil, fmt.Errorf("%w: invalid domain %q", ErrMalformed, msg.Domain)
	}

	addrLine, ok := r.next()
	if !ok {
		return nil, fmt.Errorf("%w: missing address", ErrMalformed)
	}
	addr, err := parseChecksummedAddress(addrLine)
	if err != nil {
		return nil, err
	}
	msg.Address = addr

	r.skipBlank()
	if !strings.HasPrefix(r.peek(), tagURI) {
		msg.Statement, _ = r.next()
		r.skipBlank()
	}

	if msg.URI, err = r.field(tagURI); err != nil {
		return nil, err
	}
	if u, perr := url.Parse(msg.URI); perr != nil || u.Scheme == "" {
		return nil, fmt.Errorf("%w: invalid URI %q", ErrMalformed, msg.URI)
	}

	if msg.Version, err = r.field(tagVersion); err != nil {
		return nil, err
	}
	if msg.Version != "1" {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrMalformed, msg.Version)
	}

	chain, err := r.field(tagChainID)
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseInt(chain, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%w: invalid chain id %q", ErrMalformed, chain)
	}
	msg.ChainID = domain.ChainID(n)

	if msg.Nonce, err = r.field(tagNonce); err != nil {
		return nil, err
	}
	if !validNonce(msg.Nonce) {
		return nil, fmt.Errorf("%w: invalid nonce", ErrMalformed)
	}

	issued, err := r.field(tagIssuedAt)
	if err != nil {
		return nil, err
	}
	if msg.IssuedAt, err = parseTime(issued); err != nil {
		return nil, err
	}

	if v, ok := r.optional(tagExpiration); ok {
		t, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		msg.ExpirationTime = &t
	}
	if v, ok := r.optional(tagNotBefore); ok {
		t, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		msg.NotBefore = &t
	}
	if v, ok := r.optional(tagRequestID); ok {
		msg.RequestID = v
	}
	if r.peek() == tagResources {
		r.next()
		for strings.HasPrefix(r.peek(), "- ") {
			line, _ := r.next()
			msg.Resources = append(msg.Resources, strings.TrimPrefix(line, "- "))
		}
	}

	if !r.done() {
		return nil, fmt.Errorf("%w: unexpected line %q", ErrMalformed, r.peek())
	}
	return msg, nil
}

func parseChecksummedAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) || !strings.HasPrefix(s, "0x") {
		return common.Address{}, fmt.Errorf("%w: invalid address %q", ErrMalformed, s)
	}
	addr := common.HexToAddress(s)
	if addr.Hex() != s {
		return common.Address{}, fmt.Errorf("%w: address %q is not EIP-55 checksummed", ErrMalformed, s)
	}
	return addr, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", ErrMalformed, s)
	}
	return t, nil
}

func validNonce(s string) bool {
	if len(s) < minNonceLength {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// String renders the message in canonical EIP-4361 form.
func (m *Message) String() string {
	var b strings.Builder
	b.WriteString(m.Domain + headerSuffix + "\n")
	b.WriteString(m.Address.Hex() + "\n\n")
	if m.Statement != "" {
		b.WriteString(m.Statement + "\n\n")
	}
	b.WriteString(tagURI + m.URI + "\n")
	b.WriteString(tagVersion + m.Version + "\n")
	b.WriteString(tagChainID + m.ChainID.String() + "\n")
	b.WriteString(tagNonce + m.Nonce + "\n")
	b.WriteString(tagIssuedAt + m.IssuedAt.UTC().Format(time.RFC3339))
	if m.ExpirationTime != nil {
		b.WriteString("\n" + tagExpiration + m.ExpirationTime.UTC().Format(time.RFC3339))
	}
	if m.NotBefore != nil {
		b.WriteString("\n" + tagNotBefore + m.NotBefore.UTC().Format(time.RFC3339))
	}
	if m.RequestID != "" {
		b.WriteString("\n" + tagRequestID + m.RequestID)
	}
	if len(m.Resources) > 0 {
		b.WriteString("\n" + tagResources)
		for _, res := range m.Resources {
			b.WriteString("\n- " + res)
		}
	}
	return b.String()
}
