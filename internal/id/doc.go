// Package id generates the time-sortable identifiers used for call-log
// entries. IDs created in the same millisecond are disambiguated by a
// counter mixed into the random component, so sorting by ID preserves
// logging order.
package id
