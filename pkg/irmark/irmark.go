// Package irmark computes the IRmark integrity digest embedded in
// Inland Revenue gateway submissions.
//
// The IRmark is a SHA-1 digest over the exclusive canonical form of the
// GovTalk message body with the IRmark element itself removed. Because
// the digest cannot cover itself, sealing is a two-step pipeline: the
// body is rendered with an opaque placeholder token, the digest is
// computed over a copy with the placeholder element deleted, and the
// token in the outgoing document is then replaced with the base64
// encoded digest.
package irmark

import (
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/leifj/signedxml"
)

// Token is the placeholder the envelope assembler writes into the
// IRmark element and Seal later replaces with the encoded digest. Both
// steps must share this exact value.
const Token = "IRmark+Token"

var (
	// ErrPlaceholder reports that the body did not contain exactly one
	// IRmark placeholder element.
	ErrPlaceholder = errors.New("irmark: body must contain exactly one IRmark placeholder")

	// ErrCanonicalize reports that the extracted body fragment could
	// not be parsed or canonicalized.
	ErrCanonicalize = errors.New("irmark: cannot canonicalize body")
)

// placeholderPattern matches the IRmark element, optionally namespace
// prefixed, holding a base64-alphabet text (the placeholder token or a
// previously spliced digest).
var placeholderPattern = regexp.MustCompile(
	`<(?:[A-Za-z0-9]+:)?IRmark Type="generic">[A-Za-z0-9/+=]*</(?:[A-Za-z0-9]+:)?IRmark>`)

// bodyPattern extracts the inner XML of the GovTalk Body element from
// the outer document text.
var bodyPattern = regexp.MustCompile(`(?s)<Body[^>]*>(.*)</Body>`)

// Compute produces the 20-byte IRmark digest for a message body still
// carrying its placeholder. The namespaces map is the declaration
// context active at the point the body was extracted ("" keys the
// default namespace); it is re-declared on a synthetic Body wrapper so
// canonicalization resolves names exactly as in the original document.
func Compute(bodyXML string, namespaces map[string]string) ([]byte, error) {
	matches := placeholderPattern.FindAllStringIndex(bodyXML, -1)
	if len(matches) != 1 {
		return nil, fmt.Errorf("%w: found %d", ErrPlaceholder, len(matches))
	}

	// The placeholder element is deleted outright, not blanked: the
	// digest covers the body as if the mark were never there.
	stripped := placeholderPattern.ReplaceAllString(bodyXML, "")

	doc := etree.NewDocument()
	if err := doc.ReadFromString(wrapBody(stripped, namespaces)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCanonicalize, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrCanonicalize)
	}

	canonicalizer := signedxml.ExclusiveCanonicalization{WithComments: false}
	canonical, err := canonicalizer.ProcessElement(root, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCanonicalize, err)
	}

	sum := sha1.Sum([]byte(canonical))
	return sum[:], nil
}

// Seal computes the IRmark over the Body of the full outer document and
// substitutes the encoded digest for the placeholder token. This is the
// document-signing hook the transport collaborator invokes immediately
// before transmission.
func Seal(outerDoc string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(outerDoc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCanonicalize, err)
	}
	body := doc.FindElement("//Body")
	if body == nil {
		return "", fmt.Errorf("%w: no Body element", ErrCanonicalize)
	}

	inner := bodyPattern.FindStringSubmatch(outerDoc)
	if inner == nil {
		return "", fmt.Errorf("%w: no Body element in text", ErrCanonicalize)
	}

	digest, err := Compute(inner[1], namespaceContext(body))
	if err != nil {
		return "", err
	}

	mark := base64.StdEncoding.EncodeToString(digest)
	return strings.ReplaceAll(outerDoc, Token, mark), nil
}

// namespaceContext collects the namespace declarations in scope at the
// given element. Declarations closer to the element shadow outer ones.
func namespaceContext(el *etree.Element) map[string]string {
	ns := make(map[string]string)
	for e := el; e != nil; e = e.Parent() {
		for _, attr := range e.Attr {
			switch {
			case attr.Space == "xmlns":
				if _, seen := ns[attr.Key]; !seen {
					ns[attr.Key] = attr.Value
				}
			case attr.Space == "" && attr.Key == "xmlns":
				if _, seen := ns[""]; !seen {
					ns[""] = attr.Value
				}
			}
		}
	}
	return ns
}

// wrapBody re-wraps a body fragment in a synthetic Body root carrying
// the namespace declarations of its original context, default namespace
// first and prefixed declarations in prefix order for determinism.
func wrapBody(fragment string, namespaces map[string]string) string {
	var b strings.Builder
	b.WriteString("<Body")
	if uri, ok := namespaces[""]; ok {
		fmt.Fprintf(&b, " xmlns=%q", uri)
	}
	prefixes := make([]string, 0, len(namespaces))
	for prefix := range namespaces {
		if prefix != "" {
			prefixes = append(prefixes, prefix)
		}
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		fmt.Fprintf(&b, " xmlns:%s=%q", prefix, namespaces[prefix])
	}
	b.WriteString(">")
	b.WriteString(fragment)
	b.WriteString("</Body>")
	return b.String()
}
