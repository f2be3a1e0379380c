// Package variant defines the closed set of presentation variants a visual
// test runs under.
//
// A Variant is an immutable value: a name (Light, Dark), a dark-mode flag, a
// locale and the palette the themed frame paints with. Variants are grouped
// in a Set, which is validated once at construction time; an empty or
// ambiguous set is a ConfigurationError and never reaches a test.
//
// The ID of a variant is its lower-cased name and is the last component of
// every artifact name, so a Set rejects two variants whose IDs collide.
//
// Variants files are YAML:
//
//	variants:
//	  - name: Light
//	    locale: en-US
//	    theme: light
//	  - name: Dark
//	    dark: true
//	    palette:
//	      background: "#282a36"
package variant
