// Package loader turns textual module descriptions (TOML or YAML) and binary
// msgpack snapshots into declaration graphs, and back.
//
// Type references use the compact form Ns.Name<Arg,...>; !i names the i-th
// generic parameter of the declaring type and !!i that of the method.
package loader

// ModuleDesc describes one module.
type ModuleDesc struct {
	Name  string     `toml:"name,omitempty" yaml:"name" msgpack:"name"`
	Types []TypeDesc `toml:"types,omitempty" yaml:"types" msgpack:"types"`
}

// Kinds of type descriptions. KindRole and KindView add the role markers so
// that descriptions do not have to spell them out.
const (
	KindClass     = "class"
	KindInterface = "interface"
	KindRole      = "role"
	KindView      = "view"
)

// TypeDesc describes one type.
type TypeDesc struct {
	Name       string   `toml:"name,omitempty" yaml:"name" msgpack:"name"`
	Kind       string   `toml:"kind,omitempty" yaml:"kind,omitempty" msgpack:"kind,omitempty"`
	Visibility string   `toml:"visibility,omitempty" yaml:"visibility,omitempty" msgpack:"visibility,omitempty"`
	Flags      []string `toml:"flags,omitempty" yaml:"flags,omitempty" msgpack:"flags,omitempty"`
	Base       string   `toml:"base,omitempty" yaml:"base,omitempty" msgpack:"base,omitempty"`
	// Generics entries are "T" or "T: Constraint, Constraint".
	Generics   []string `toml:"generics,omitempty" yaml:"generics,omitempty" msgpack:"generics,omitempty"`
	Interfaces []string `toml:"interfaces,omitempty" yaml:"interfaces,omitempty" msgpack:"interfaces,omitempty"`
	// Does lists composed roles or role views.
	Does []string `toml:"does,omitempty" yaml:"does,omitempty" msgpack:"does,omitempty"`
	// Views lists the roles a view type is over.
	Views      []string       `toml:"views,omitempty" yaml:"views,omitempty" msgpack:"views,omitempty"`
	Declaring  string         `toml:"declaring,omitempty" yaml:"declaring,omitempty" msgpack:"declaring,omitempty"`
	Attrs      []AttrDesc     `toml:"attrs,omitempty" yaml:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Location   string         `toml:"location,omitempty" yaml:"location,omitempty" msgpack:"location,omitempty"`
	Methods    []MethodDesc   `toml:"methods,omitempty" yaml:"methods,omitempty" msgpack:"methods,omitempty"`
	Properties []PropertyDesc `toml:"properties,omitempty" yaml:"properties,omitempty" msgpack:"properties,omitempty"`
	Events     []EventDesc    `toml:"events,omitempty" yaml:"events,omitempty" msgpack:"events,omitempty"`
	Fields     []FieldDesc    `toml:"fields,omitempty" yaml:"fields,omitempty" msgpack:"fields,omitempty"`
}

// AttrDesc is a custom attribute with positional arguments.
type AttrDesc struct {
	Type string   `toml:"type,omitempty" yaml:"type" msgpack:"type"`
	Args []string `toml:"args,omitempty" yaml:"args,omitempty" msgpack:"args,omitempty"`
}

// MethodDesc describes a method or an accessor.
//
// A method has a body unless it is abstract, P/Invoke or NoBody is set. Body
// lines are "op" or "op operand".
type MethodDesc struct {
	Name   string   `toml:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Access string   `toml:"access,omitempty" yaml:"access,omitempty" msgpack:"access,omitempty"`
	Flags  []string `toml:"flags,omitempty" yaml:"flags,omitempty" msgpack:"flags,omitempty"`
	// Params entries are "name: Type" or just "Type".
	Params    []string   `toml:"params,omitempty" yaml:"params,omitempty" msgpack:"params,omitempty"`
	Returns   string     `toml:"returns,omitempty" yaml:"returns,omitempty" msgpack:"returns,omitempty"`
	Generics  []string   `toml:"generics,omitempty" yaml:"generics,omitempty" msgpack:"generics,omitempty"`
	Body      []string   `toml:"body,omitempty" yaml:"body,omitempty" msgpack:"body,omitempty"`
	NoBody    bool       `toml:"no_body,omitempty" yaml:"no_body,omitempty" msgpack:"no_body,omitempty"`
	Overrides []string   `toml:"overrides,omitempty" yaml:"overrides,omitempty" msgpack:"overrides,omitempty"`
	Attrs     []AttrDesc `toml:"attrs,omitempty" yaml:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Location  string     `toml:"location,omitempty" yaml:"location,omitempty" msgpack:"location,omitempty"`
}

// PropertyDesc describes a property. An accessor without a name gets the
// conventional get_X/set_X name and shape.
type PropertyDesc struct {
	Name     string      `toml:"name,omitempty" yaml:"name" msgpack:"name"`
	Type     string      `toml:"type,omitempty" yaml:"type" msgpack:"type"`
	Params   []string    `toml:"params,omitempty" yaml:"params,omitempty" msgpack:"params,omitempty"`
	Get      *MethodDesc `toml:"get,omitempty" yaml:"get,omitempty" msgpack:"get,omitempty"`
	Set      *MethodDesc `toml:"set,omitempty" yaml:"set,omitempty" msgpack:"set,omitempty"`
	Attrs    []AttrDesc  `toml:"attrs,omitempty" yaml:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Location string      `toml:"location,omitempty" yaml:"location,omitempty" msgpack:"location,omitempty"`
}

// EventDesc describes an event.
type EventDesc struct {
	Name     string      `toml:"name,omitempty" yaml:"name" msgpack:"name"`
	Type     string      `toml:"type,omitempty" yaml:"type" msgpack:"type"`
	Add      *MethodDesc `toml:"add,omitempty" yaml:"add,omitempty" msgpack:"add,omitempty"`
	Remove   *MethodDesc `toml:"remove,omitempty" yaml:"remove,omitempty" msgpack:"remove,omitempty"`
	Raise    *MethodDesc `toml:"raise,omitempty" yaml:"raise,omitempty" msgpack:"raise,omitempty"`
	Attrs    []AttrDesc  `toml:"attrs,omitempty" yaml:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Location string      `toml:"location,omitempty" yaml:"location,omitempty" msgpack:"location,omitempty"`
}

// FieldDesc describes a field. Flags are "static" and "initonly".
type FieldDesc struct {
	Name     string     `toml:"name,omitempty" yaml:"name" msgpack:"name"`
	Type     string     `toml:"type,omitempty" yaml:"type" msgpack:"type"`
	Access   string     `toml:"access,omitempty" yaml:"access,omitempty" msgpack:"access,omitempty"`
	Flags    []string   `toml:"flags,omitempty" yaml:"flags,omitempty" msgpack:"flags,omitempty"`
	Attrs    []AttrDesc `toml:"attrs,omitempty" yaml:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Location string     `toml:"location,omitempty" yaml:"location,omitempty" msgpack:"location,omitempty"`
}
