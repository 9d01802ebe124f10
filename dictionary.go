package gtx

import (
	"strings"

	"github.com/xdbsoft/gtx/criterion"
)

type collectionTemplate struct {
	def      CollectionDefinition
	segments []string
	sortable map[string]bool
}

func (t collectionTemplate) match(typ string) bool {
	segments := strings.Split(typ, "/")
	if len(segments) != len(t.segments) {
		return false
	}
	for i, s := range t.segments {
		if ok, _ := isVariable(s); ok {
			continue
		}
		if s != segments[i] {
			return false
		}
	}
	return true
}

func isVariable(s string) (bool, string) {
	if len(s) >= 3 && s[0] == '{' && s[len(s)-1] == '}' {
		return true, s[1 : len(s)-1]
	}
	return false, ""
}

//dictionary implements api.Dictionary from collection definitions.
//The first definition matching a type wins.
type dictionary struct {
	templates []collectionTemplate
}

func newDictionary(defs []CollectionDefinition) *dictionary {
	d := &dictionary{}
	for _, def := range defs {
		t := collectionTemplate{
			def:      def,
			segments: strings.Split(def.Name, "/"),
			sortable: map[string]bool{criterion.IDField: true},
		}
		for _, f := range def.Sortable {
			t.sortable[f] = true
		}
		d.templates = append(d.templates, t)
	}
	return d
}

func (d *dictionary) lookup(typ string) (collectionTemplate, bool) {
	for _, t := range d.templates {
		if t.match(typ) {
			return t, true
		}
	}
	return collectionTemplate{}, false
}

func (d *dictionary) Exists(typ string) bool {
	_, ok := d.lookup(typ)
	return ok
}

func (d *dictionary) IsSortable(typ string, field string) bool {
	t, ok := d.lookup(typ)
	return ok && t.sortable[field]
}
