// Package il models the carrier bytecode-module format: modules, type and
// member declarations, method bodies with instruction streams, exception
// handler regions, locals and debug tables. It is the shared vocabulary of
// the scanner, the patcher and the validator; nothing in this package
// performs I/O (see ilbin for the on-disk codec).
package il
