/*
Package cond compiles the condition language used by flow-file edges.

# Overview

A flow file declares an edge's predicate inline:

	edges:
	  - {from: login, to: admin, when: "output.role == 'admin'"}
	  - {from: login, to: home}

The condition is compiled once when the file is loaded, so syntax errors
surface as configuration errors, and is evaluated against the source
screen's output each time the edge is considered.

# Syntax

	<cond> := <cond> 'or' <cond>
	        | <cond> 'and' <cond>
	        | 'not' <cond>
	        | '!' <cond>
	        | <value> <op> <value>
	        | <value>

	<op>    := '==' | '!=' | '<' | '>' | '<=' | '>=' | 'contains'
	<value> := 'string' | "string" | number | true | false | null | path
	<path>  := identifier ('.' identifier)*

"and" binds tighter than "or"; "not" applies to the rest of its operand.
Separators inside quoted strings are ignored.

# Values

Paths resolve through the variables given to Eval. Match binds the output
to "output", so "output.user.name" walks into maps with string keys and
into struct fields, matching either the field name or its json tag.
Missing paths resolve to nil.

== and != compare numbers numerically and everything else by its %v form.
The ordering operators compare numerically, treating unparsable values as
zero. contains is a substring test on the %v forms.

# Truthiness

A bare value is true unless it is nil, false, an empty string, or a zero
number.
*/
package cond
