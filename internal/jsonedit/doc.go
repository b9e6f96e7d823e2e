// Package jsonedit renames fields inside JSON values.
//
// Values are decoded generically, so objects come back with their keys in
// sorted order and numbers keep their original text (json.Number). Fields
// are addressed either by a plain key or by a JSON pointer such as
// /user/name; the renamed member stays in the same parent object.
package jsonedit
