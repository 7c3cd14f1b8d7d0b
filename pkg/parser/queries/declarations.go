package queries

// interfaceMembersQuery captures the direct members of an interface body.
//
// Captures:
//   - @member.name       - the property or method name
//   - @member.definition - the whole signature
const interfaceMembersQuery = `
; Depressed?: boolean
(interface_body
  (property_signature
    name: (_) @member.name) @member.definition)

; DoClick?(this: DButton): void
(interface_body
  (method_signature
    name: (_) @member.name) @member.definition)
`

// namespaceMembersQuery captures declarations that can appear in an
// ambient namespace. Matches from nested scopes are filtered by the caller.
const namespaceMembersQuery = `
; function Add(name: string): void;
(function_signature
  name: (identifier) @member.name) @member.definition

(function_declaration
  name: (identifier) @member.name) @member.definition

; const MAX: number;
(lexical_declaration
  (variable_declarator
    name: (identifier) @member.name)) @member.definition

(variable_declaration
  (variable_declarator
    name: (identifier) @member.name)) @member.definition

(interface_declaration
  name: (type_identifier) @member.name) @member.definition

(type_alias_declaration
  name: (type_identifier) @member.name) @member.definition

(enum_declaration
  name: (identifier) @member.name) @member.definition

; namespace inner { ... }
(internal_module
  name: (identifier) @member.name) @member.definition
`

// errorsQuery captures syntax error nodes. Missing tokens are not ERROR
// nodes and are found by walking the tree.
const errorsQuery = `(ERROR) @error`
