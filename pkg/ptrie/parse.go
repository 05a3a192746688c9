package ptrie

import "fmt"

// step is one parsed construct of a pattern: either a literal character
// or a capability.
type step struct {
	literal bool
	r       rune
	cap     capability
}

type parser struct {
	src   string
	runes []rune
	pos   int
}

// parse translates a pattern into steps without touching any trie, so
// that a failure leaves the target trie unchanged.
func parse(pattern string) ([]step, error) {
	p := &parser{src: pattern, runes: []rune(pattern)}

	for i, r := range p.runes {
		if r == sentinel {
			return nil, p.errorf(i, ErrReservedRune, "U+0000 may not appear in a pattern")
		}
	}

	steps := make([]step, 0, len(p.runes))
	for p.pos < len(p.runes) {
		s, err := p.next()
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func (p *parser) next() (step, error) {
	switch r := p.runes[p.pos]; r {
	case classOpen:
		cs, err := p.parseClass()
		if err != nil {
			return step{}, err
		}
		return step{cap: capability{kind: capClass, class: cs}}, nil
	case repeatMarker:
		return p.parseRepetition()
	case groupOpen:
		return p.parseGroup()
	default:
		p.pos++
		return step{literal: true, r: r}, nil
	}
}

// parseClass consumes 「…」 starting at p.pos.
func (p *parser) parseClass() (CharSet, error) {
	start := p.pos
	end := p.indexFrom(classClose, start)
	if end < 0 {
		return CharSet{}, p.errorf(start, ErrMalformedClass, "missing %c", classClose)
	}
	cs, err := ParseCharSet(string(p.runes[start : end+1]))
	if err != nil {
		return CharSet{}, p.wrap(start, err)
	}
	p.pos = end + 1
	return *cs, nil
}

// parseRepetition consumes 〸x or 〸「…」 starting at p.pos.
func (p *parser) parseRepetition() (step, error) {
	start := p.pos
	p.pos++
	if p.pos >= len(p.runes) {
		return step{}, p.errorf(start, ErrMalformedRepetition, "%c must be followed by a character", repeatMarker)
	}

	var inner CharSet
	if p.runes[p.pos] == classOpen {
		cs, err := p.parseClass()
		if err != nil {
			return step{}, err
		}
		inner = cs
	} else {
		if err := inner.AddChar(p.runes[p.pos]); err != nil {
			return step{}, p.wrap(p.pos, err)
		}
		inner.display = string(p.runes[p.pos : p.pos+1])
		p.pos++
	}
	if inner.Empty() {
		return step{}, p.errorf(start, ErrMalformedRepetition, "repeated class is empty")
	}
	return step{cap: capability{kind: capRepeat, class: inner}}, nil
}

// parseGroup consumes 〔label〡sub〕 starting at p.pos and compiles sub
// into a fresh, sealed trie.
func (p *parser) parseGroup() (step, error) {
	start := p.pos
	end := p.indexFrom(groupClose, start)
	if end < 0 {
		return step{}, p.errorf(start, ErrMalformedGroup, "missing %c", groupClose)
	}
	sep := p.indexFrom(groupSep, start)
	if sep < 0 || sep > end {
		return step{}, p.errorf(start, ErrMalformedGroup, "missing %c", groupSep)
	}

	sub := New()
	if err := sub.AddPattern(string(p.runes[sep+1 : end])); err != nil {
		return step{}, p.wrap(sep+1, err)
	}
	sub.Freeze()

	p.pos = end + 1
	return step{cap: capability{
		kind:  capGroup,
		group: sub,
		label: string(p.runes[start+1 : sep]),
	}}, nil
}

func (p *parser) indexFrom(r rune, from int) int {
	for i := from; i < len(p.runes); i++ {
		if p.runes[i] == r {
			return i
		}
	}
	return -1
}

func (p *parser) errorf(offset int, kind error, format string, args ...any) error {
	return p.wrap(offset, fmt.Errorf("%w: "+format, append([]any{kind}, args...)...))
}

func (p *parser) wrap(offset int, err error) error {
	return &PatternError{Pattern: p.src, Offset: offset, Err: err}
}
