package xml

import (
	"errors"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/rezonia/nfe-converter/internal/model"
)

// NF-e namespace and root information element
const (
	NFeNamespace = "http://www.portalfiscal.inf.br/nfe"
	InfNFe       = "infNFe"
)

var (
	exactRootPath    = etree.MustCompilePath("//" + InfNFe + "[namespace-uri()='" + NFeNamespace + "']")
	wildcardRootPath = etree.MustCompilePath("//" + InfNFe)
)

var errNoRoot = errors.New("document has no root element")

// ReadDocument parses raw bytes into a DOM tree. Any parser failure,
// including input without a root element, is a MalformedXMLError.
func ReadDocument(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.ValidateInput = true
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, model.NewMalformedXMLError(err)
	}
	if doc.Root() == nil {
		return nil, model.NewMalformedXMLError(errNoRoot)
	}
	return doc, nil
}

// charsetReader decodes the single-byte encodings older emitters declare.
// Anything else is read as UTF-8.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	}
	return input, nil
}

// FirstChildByLocalName returns the first immediate child of parent whose
// tag, without namespace prefix, equals name. A nil parent yields nil.
func FirstChildByLocalName(parent *etree.Element, name string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, child := range parent.ChildElements() {
		if child.Tag == name {
			return child
		}
	}
	return nil
}

// ChildrenByLocalName returns every immediate child of parent named name,
// in document order.
func ChildrenByLocalName(parent *etree.Element, name string) []*etree.Element {
	if parent == nil {
		return nil
	}
	var out []*etree.Element
	for _, child := range parent.ChildElements() {
		if child.Tag == name {
			out = append(out, child)
		}
	}
	return out
}

// ElementAtPath walks FirstChildByLocalName for each name in path.
func ElementAtPath(root *etree.Element, path ...string) *etree.Element {
	node := root
	for _, name := range path {
		node = FirstChildByLocalName(node, name)
		if node == nil {
			return nil
		}
	}
	return node
}

// TextAtPath returns the trimmed text of the element found by walking path
// from root, or "" as soon as any step is missing.
func TextAtPath(root *etree.Element, path ...string) string {
	node := ElementAtPath(root, path...)
	if node == nil {
		return ""
	}
	return strings.TrimSpace(node.Text())
}

// LocateRootElement finds the infNFe element, first within the NF-e
// namespace and then under any namespace.
func LocateRootElement(doc *etree.Document) (*etree.Element, error) {
	if doc == nil {
		return nil, model.NewStructureNotFoundError(InfNFe)
	}
	if el := doc.FindElementPath(exactRootPath); el != nil {
		return el, nil
	}
	if el := doc.FindElementPath(wildcardRootPath); el != nil {
		return el, nil
	}
	return nil, model.NewStructureNotFoundError(InfNFe)
}
