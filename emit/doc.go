// Package emit renders a scheduled install/remove sequence into the
// deployment descriptor's text skeleton: a BEGIN INSTALL/END INSTALL
// block followed by a BEGIN REMOVE/END REMOVE block, each snippet's
// statements optionally wrapped in an implementor BEGIN/END condition,
// after a lexability pass confirms the result is safe for the
// descriptor's own reader to tokenize (spec §4.9).
package emit
