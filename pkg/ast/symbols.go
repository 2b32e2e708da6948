package ast

import "strings"

// constantDef is a named compile-time constant visible to the evaluator:
// an enumerator or an object-like macro with a literal body.
type constantDef struct {
	value     *Node        // explicit enumerator value
	prev      *constantDef // previous enumerator, for implicit values
	literal   string       // macro body
	ambiguous bool
}

// constantTable returns the file's named constants, building it on first use.
func (t *Tree) constantTable() map[string]*constantDef {
	t.constOnce.Do(func() {
		t.constants = make(map[string]*constantDef)
		Walk(t.Root, func(n *Node) bool {
			switch n.Type {
			case "enumerator_list":
				t.addEnumerators(n)
				return false
			case "preproc_def":
				t.addMacro(n)
				return false
			}
			return true
		})
	})
	return t.constants
}

func (t *Tree) addEnumerators(list *Node) {
	var prev *constantDef
	for _, e := range list.Children {
		if e.Type != "enumerator" {
			continue
		}
		def := &constantDef{value: e.ChildByField("value")}
		if def.value == nil {
			def.prev = prev
		}
		t.define(e.ChildByField("name").Text(), def)
		prev = def
	}
}

func (t *Tree) addMacro(n *Node) {
	name := n.ChildByField("name").Text()
	body := strings.TrimSpace(n.ChildByField("value").Text())
	if body == "" {
		return
	}
	t.define(name, &constantDef{literal: body})
}

func (t *Tree) define(name string, def *constantDef) {
	if name == "" {
		return
	}
	if existing, ok := t.constants[name]; ok {
		existing.ambiguous = true
		return
	}
	t.constants[name] = def
}
