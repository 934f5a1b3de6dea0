package hiera

import (
	"fmt"
	"reflect"
)

// emptyListText is the only rendering the store uses for an empty sequence.
const emptyListText = "[]"

// evidence is what the sequence-mode and scalar-mode queries said about
// one variable.
type evidence struct {
	scalarText string
	list       listForm

	// varForm is the scalar-mode text decoded as YAML; varOK reports
	// whether that decode succeeded.
	varForm any
	varOK   bool

	// mergeArrays returns the sequence-mode rendering for prefix-confirmed
	// sequences instead of the scalar-mode list.
	mergeArrays bool
}

// verdict is the outcome of one rule. matched=false means the rule does not
// apply and the next one should run.
type verdict struct {
	value   Value
	err     error
	matched bool
}

func decided(v Value) verdict { return verdict{value: v, matched: true} }

func rejected(err error) verdict { return verdict{err: err, matched: true} }

func undecided() verdict { return verdict{} }

type rule struct {
	name  string
	apply func(ev *evidence) verdict
}

// rules run in order; the first one that matches decides the variable.
var rules = []rule{
	{"first-element-text", firstElementText},
	{"empty-collection", emptyCollection},
	{"sequence-prefix", sequencePrefix},
	{"empty-list-nonempty-scalar", emptyListNonEmptyScalar},
	{"first-element-decode", firstElementDecode},
}

// disambiguate decides whether a variable that resolved in both sequence
// and scalar mode is really a sequence or a scalar. It returns the decided
// value and the name of the rule that decided it.
func disambiguate(sequenceText, scalarText string, mergeArrays bool) (Value, string, error) {
	list, err := parseList(sequenceText)
	if err != nil {
		return Value{}, "", err
	}

	ev := &evidence{
		scalarText:  scalarText,
		list:        list,
		mergeArrays: mergeArrays,
	}
	if v, err := decodeAny(scalarText); err == nil {
		ev.varForm, ev.varOK = v, true
	}

	for _, r := range rules {
		if v := r.apply(ev); v.matched {
			return v.value, r.name, v.err
		}
	}
	return Value{}, "", fmt.Errorf("%w: could not determine whether the variable is a scalar or a sequence from the available textual evidence", ErrAmbiguous)
}

// firstElementText: the store wraps a scalar in a one-element list, so a
// first element whose literal text is the scalar rendering means a scalar.
// The literal "[]" is left to emptyCollection, which knows it is ambiguous.
func firstElementText(ev *evidence) verdict {
	if ev.scalarText == emptyListText {
		return undecided()
	}
	text, ok := ev.list.elementText(0)
	if !ok || text != ev.scalarText {
		return undecided()
	}
	return decided(Scalar(decodeScalar(ev.scalarText)))
}

// emptyCollection handles a scalar rendering that decodes to nothing: an
// empty string or an empty list literal.
func emptyCollection(ev *evidence) verdict {
	if !ev.varOK || !isEmpty(ev.varForm) {
		return undecided()
	}
	if ev.list.len() == 0 {
		return decided(Sequence(nil))
	}
	if ev.scalarText == emptyListText {
		if first, ok := ev.list.elementString(0); ok && first == emptyListText {
			return rejected(fmt.Errorf("%w: cannot distinguish the literal string %q from an empty sequence", ErrAmbiguous, emptyListText))
		}
		return decided(Sequence(nil))
	}
	return rejected(fmt.Errorf("%w: scalar form %q is an empty collection but not %q, and the sequence form is not empty",
		ErrInconsistentStore, ev.scalarText, emptyListText))
}

// sequencePrefix: a scalar rendering that is itself a list literal and a
// prefix of the sequence rendering confirms a sequence.
func sequencePrefix(ev *evidence) verdict {
	if !ev.varOK {
		return undecided()
	}
	items, ok := ev.varForm.([]any)
	if !ok || len(items) == 0 {
		return undecided()
	}

	if ev.list.len() >= len(items) && isPrefix(items, ev.list.values) {
		if ev.mergeArrays {
			return decided(Sequence(ev.list.values))
		}
		return decided(Sequence(items))
	}
	if ev.list.len() == 0 {
		return rejected(fmt.Errorf("%w: scalar form resolved to a nonempty list while the sequence form resolved to an empty list",
			ErrInconsistentStore))
	}
	return undecided()
}

// emptyListNonEmptyScalar: an empty sequence rendering can only pair with an
// empty scalar rendering, which emptyCollection already handled.
func emptyListNonEmptyScalar(ev *evidence) verdict {
	if ev.list.len() != 0 {
		return undecided()
	}
	return rejected(fmt.Errorf("%w: scalar form is %q but the sequence form is an empty list",
		ErrInconsistentStore, ev.scalarText))
}

// firstElementDecode: the first list element is a string whose YAML
// decoding equals the scalar rendering, so the variable is that string.
func firstElementDecode(ev *evidence) verdict {
	first, ok := ev.list.elementString(0)
	if !ok {
		return undecided()
	}
	decodedFirst, err := decodeAny(first)
	if err != nil {
		return undecided()
	}

	var want any = ev.scalarText
	if ev.varOK {
		want = ev.varForm
	}
	if !reflect.DeepEqual(decodedFirst, want) {
		return undecided()
	}
	return decided(Scalar(first))
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	items, ok := v.([]any)
	return ok && len(items) == 0
}

func isPrefix(prefix, full []any) bool {
	for i := range prefix {
		if !reflect.DeepEqual(prefix[i], full[i]) {
			return false
		}
	}
	return true
}
