package xmlsec

import "github.com/beevik/etree"

// FindByID returns the first element under root whose "ID" or "Id"
// attribute equals id, or root itself when id is empty (the "whole
// document" signing/verification case, §4.4).
func FindByID(root *etree.Element, id string) *etree.Element {
	if id == "" {
		return root
	}
	var found *etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if found != nil {
			return
		}
		if e.SelectAttrValue("ID", "") == id || e.SelectAttrValue("Id", "") == id {
			found = e
			return
		}
		for _, child := range e.ChildElements() {
			walk(child)
			if found != nil {
				return
			}
		}
	}
	walk(root)
	return found
}
