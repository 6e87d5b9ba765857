// Package detail renders the full record of a budget line: label, amount and
// every attribute of the YAML file, in a stable order.
package detail
