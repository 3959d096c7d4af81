package libknot

import (
	"sort"
	"strings"
	"sync"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/poly"
)

type knownValue struct {
	name  string
	value string
}

// knownValues lists invariant values of small knots and graphs.  Both chiralities are listed where they differ.
var knownValues = map[goknot.Kind][]knownValue{
	goknot.Alexander: {
		{"0_1", "1"},
		{"3_1", "t^2 - t + 1"},
		{"4_1", "t^2 - 3t + 1"},
		{"5_1", "t^4 - t^3 + t^2 - t + 1"},
		{"5_2", "2t^2 - 3t + 2"},
		{"6_1", "2t^2 - 5t + 2"},
		{"6_2", "t^4 - 3t^3 + 3t^2 - 3t + 1"},
		{"6_3", "t^4 - 3t^3 + 5t^2 - 3t + 1"},
		{"7_1", "t^6 - t^5 + t^4 - t^3 + t^2 - t + 1"},
	},
	goknot.Jones: {
		{"0_1", "1"},
		{"3_1", "t^-1 + t^-3 - t^-4"},
		{"3_1", "t + t^3 - t^4"},
		{"4_1", "t^2 - t + 1 - t^-1 + t^-2"},
		{"5_1", "t^-2 + t^-4 - t^-5 + t^-6 - t^-7"},
		{"5_1", "t^2 + t^4 - t^5 + t^6 - t^7"},
		{"5_2", "t^-1 - t^-2 + 2t^-3 - t^-4 + t^-5 - t^-6"},
		{"5_2", "t - t^2 + 2t^3 - t^4 + t^5 - t^6"},
	},
	goknot.Homfly: {
		{"0_1", "1"},
		{"3_1", "-l^4 + l^2*m^2 - 2l^2"},
		{"3_1", "l^-2*m^2 - 2l^-2 - l^-4"},
		{"4_1", "-l^2 + m^2 - 1 - l^-2"},
	},
	goknot.Conway: {
		{"0_1", "1"},
		{"3_1", "z^2 + 1"},
		{"4_1", "-z^2 + 1"},
		{"5_1", "z^4 + 3z^2 + 1"},
		{"5_2", "2z^2 + 1"},
		{"6_1", "-2z^2 + 1"},
	},
	goknot.Yamada: {
		{"0_1", "x + 1 + x^-1"},
		{"t0_1", "-x^2 - x - 2 - x^-1 - x^-2"},
		{"3_1", "x^6 - x^4 - x^3 - x^2 + x^-1 + x^-2 + x^-3 + x^-4 + x^-5"},
		{"4_1", "x^7 - x^5 + x + 1 + x^-1 - x^-5 + x^-7"},
	},
}

var (
	sTranslationsOnce sync.Once
	sTranslations     map[goknot.Kind]map[string]string
)

// translationKey is the form values are matched in: the reduced form of the normalized value.
func translationKey(kind goknot.Kind, p poly.Poly) string {
	if kind == goknot.Yamada {
		p = NormalizeYamada(p)
	}
	return p.ShortString()
}

func buildTranslations() {
	sTranslations = make(map[goknot.Kind]map[string]string, len(knownValues))
	add := func(kind goknot.Kind, p poly.Poly, name string) {
		table := sTranslations[kind]
		if table == nil {
			table = make(map[string]string)
			sTranslations[kind] = table
		}
		key := translationKey(kind, p)
		names := strings.Split(table[key], "|")
		if table[key] == "" {
			names = nil
		}
		for _, existing := range names {
			if existing == name {
				return
			}
		}
		names = append(names, name)
		sort.Strings(names)
		table[key] = strings.Join(names, "|")
	}

	for kind, values := range knownValues {
		for _, known := range values {
			p := poly.MustParse(known.value)
			add(kind, p, known.name)
			if kind == goknot.Yamada {
				x := kind.Variable()
				mirror, err := p.Substitute(x, poly.Mono(1, x, -1))
				if err == nil {
					add(kind, mirror, known.name)
				}
			}
		}
	}
}

// Translate returns the name(s) of the knots or graphs whose invariant is p (or -p), separated by '|',
// or "Unknown polynomial value (p)" if there are none.
func Translate(kind goknot.Kind, p poly.Poly) string {
	sTranslationsOnce.Do(buildTranslations)

	table := sTranslations[kind]
	for _, q := range []poly.Poly{p, p.Neg()} {
		if name, found := table[translationKey(kind, q)]; found {
			return name
		}
	}
	return "Unknown polynomial value (" + p.String() + ")"
}
