package meta

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseTypeRef parses the compact reference syntax used by module
// descriptions: "Ns.Name", "Ns.Name<A,B<C>>", "!0", "!!1" and "void".
func ParseTypeRef(s string) (TypeRef, error) {
	p := refParser{src: strings.TrimSpace(s)}
	if p.src == "" || p.src == "void" {
		return TypeRef{}, nil
	}
	ref, err := p.parse()
	if err != nil {
		return TypeRef{}, fmt.Errorf("type reference %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeRef{}, fmt.Errorf("type reference %q: unexpected %q at %d", s, p.src[p.pos:], p.pos)
	}
	return ref, nil
}

// MustParseTypeRef panics when s is not a valid reference.
func MustParseTypeRef(s string) TypeRef {
	ref, err := ParseTypeRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

type refParser struct {
	src string
	pos int
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *refParser) parse() (TypeRef, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return TypeRef{}, fmt.Errorf("unexpected end")
	}
	if p.src[p.pos] == '!' {
		return p.parseParam()
	}
	start := p.pos
	for p.pos < len(p.src) && isNameRune(rune(p.src[p.pos])) {
		p.pos++
	}
	if start == p.pos {
		return TypeRef{}, fmt.Errorf("expected type name at %d", p.pos)
	}
	ref := Named(p.src[start:p.pos])
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '<' {
		p.pos++
		for {
			arg, err := p.parse()
			if err != nil {
				return TypeRef{}, err
			}
			ref.Args = append(ref.Args, arg)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return TypeRef{}, fmt.Errorf("unclosed '<'")
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == '>' {
				p.pos++
				break
			}
			return TypeRef{}, fmt.Errorf("expected ',' or '>' at %d", p.pos)
		}
	}
	return ref, nil
}

func (p *refParser) parseParam() (TypeRef, error) {
	kind := RefTypeParam
	p.pos++
	if p.pos < len(p.src) && p.src[p.pos] == '!' {
		kind = RefMethodParam
		p.pos++
	}
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	idx, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return TypeRef{}, fmt.Errorf("expected parameter index at %d", start)
	}
	return TypeRef{Kind: kind, Index: idx}, nil
}

func isNameRune(r rune) bool {
	return r == '.' || r == '_' || r == '`' || r == '/' || r == '+' || r == '[' || r == ']' ||
		unicode.IsLetter(r) || unicode.IsDigit(r)
}
