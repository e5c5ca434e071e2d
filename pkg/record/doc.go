// Package record decodes single EDIGéO records.
//
// Every line of an EDIGéO member file has the shape
//
//	<CODE:3><NATURE:1><FORMAT:1><SIZE:2>:<VALUE>
//
// for example "RTYSA03:GTS". The header prefix is read at fixed offsets, the
// code is looked up in a closed vocabulary, the declared size is checked
// against the value's character count, and the value is decoded according
// to its format tag.
package record
