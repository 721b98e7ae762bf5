package banklink

import (
	"encoding/json"
	"html"
	"strings"
)

// HTML renders the packet as a fragment of hidden form inputs, one per
// parameter in store order, ready to embed in an auto-submitting form posted
// to the bank. Names and values are HTML-escaped.
func (p *Packet) HTML() string {
	var b strings.Builder
	for _, par := range p.params.Parameters() {
		b.WriteString(` <input type="hidden" name="`)
		b.WriteString(html.EscapeString(par.Name))
		b.WriteString(`" value="`)
		b.WriteString(html.EscapeString(par.Value))
		b.WriteString("\"/>\n")
	}
	return b.String()
}

// JSON renders the packet as a single JSON object with one string-valued key
// per parameter. The object is assembled by hand because store order must
// survive; individual strings go through encoding/json for escaping.
func (p *Packet) JSON() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, par := range p.params.Parameters() {
		if i > 0 {
			b.WriteByte(',')
		}
		name, _ := json.Marshal(par.Name)
		value, _ := json.Marshal(par.Value)
		b.Write(name)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.String()
}
