package library

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"howett.net/plist"

	"musicstats/internal/metrics"
)

// DefaultPath is where the library export is read from when no path is given.
const DefaultPath = "data/Library.xml"

var binaryMagic = []byte("bplist00")

// element is a decoded XML element with its direct character data.
type element struct {
	name     string
	text     string
	children []*element
}

func (e *element) first(name string) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ReadFile reads and parses the library export at path.
// Binary property lists are accepted and decoded under the same rules as XML.
func ReadFile(path string) (*Library, error) {
	if path == "" {
		path = DefaultPath
	}

	start := time.Now()
	lib, err := readFile(path)
	if err != nil {
		metrics.ObserveLibraryLoad(time.Since(start), 0, err)
		return nil, err
	}
	metrics.ObserveLibraryLoad(time.Since(start), lib.Len(), nil)
	return lib, nil
}

func readFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library %s: %w", path, err)
	}

	if bytes.HasPrefix(data, binaryMagic) {
		data, err = binaryToXML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode binary library %s: %w", path, err)
		}
	}

	lib, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse library %s: %w", path, err)
	}
	return lib, nil
}

// binaryToXML re-encodes a binary property list as XML so that it goes
// through the same strict decoder.
func binaryToXML(data []byte) ([]byte, error) {
	var doc any
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return plist.MarshalIndent(doc, plist.XMLFormat, "\t")
}

// Parse decodes a property-list document into a Library keyed by track ID.
// Playlists are ignored. Any structural error aborts the whole parse.
func Parse(r io.Reader) (*Library, error) {
	root, err := decodeTree(r)
	if err != nil {
		return nil, err
	}

	if len(root.children) == 0 {
		return nil, &FormatError{Tag: root.name, Reason: "document root is empty"}
	}
	top := root.children[0]

	tracks := top.first("dict")
	if tracks == nil {
		return nil, &FormatError{Tag: top.name, Reason: "no tracks dictionary"}
	}
	// The playlists <array> next to the tracks dictionary is not read.

	lib := New()
	for _, entry := range tracks.children {
		if entry.name != "dict" {
			continue
		}

		track, err := decodeTrack(entry)
		if err != nil {
			return nil, err
		}

		id, ok := track.ID()
		if !ok {
			if _, present := track[KeyTrackID]; present {
				return nil, &FormatError{Key: KeyTrackID, Reason: "track ID is not an integer"}
			}
			return nil, &FormatError{Key: KeyTrackID, Reason: "track record has no track ID"}
		}
		lib.Add(id, track)
	}

	return lib, nil
}

// decodeTrack walks the alternating <key>/value children of a track dict.
func decodeTrack(dict *element) (Track, error) {
	track := make(Track, len(dict.children)/2)

	for i := 0; i < len(dict.children); i += 2 {
		k := dict.children[i]
		if k.name != "key" {
			return nil, &FormatError{Tag: k.name, Reason: "expected <key>"}
		}
		if i+1 >= len(dict.children) {
			return nil, &FormatError{Key: k.text, Reason: "key has no value"}
		}

		v, err := decodeValue(k.text, dict.children[i+1])
		if err != nil {
			return nil, err
		}
		track[k.text] = v
	}

	return track, nil
}

func decodeValue(key string, e *element) (any, error) {
	switch e.name {
	case "integer":
		n, err := strconv.ParseInt(strings.TrimSpace(e.text), 10, 64)
		if err != nil {
			return nil, &FormatError{Tag: e.name, Key: key, Reason: fmt.Sprintf("invalid integer %q", e.text)}
		}
		return n, nil
	case "string":
		return e.text, nil
	case "date":
		return Date(e.text), nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return nil, &FormatError{Tag: e.name, Key: key, Reason: "unrecognized property type"}
	}
}

// decodeTree builds the element tree of the document's root element.
func decodeTree(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	// Library exports are UTF-8; other declared charsets are passed through.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		stack []*element
		root  *element
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("invalid XML: %v", err)}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			e := &element{name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, e)
			} else if root == nil {
				root = e
			} else {
				return nil, &FormatError{Tag: e.name, Reason: "multiple root elements"}
			}
			stack = append(stack, e)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.text += string(t)
			}
		}
	}

	if root == nil {
		return nil, &FormatError{Reason: "document has no root element"}
	}
	return root, nil
}
