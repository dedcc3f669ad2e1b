// Package acceptance ejecuta los escenarios Gherkin del ledger de inventario
// contra los casos de uso armados sobre el almacén en memoria.
package acceptance
