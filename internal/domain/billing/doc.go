// Package billing provides domain models for the invoice and payment ledger.
//
// This package implements the billing bounded context, which is responsible for:
//   - Issuing invoices against contract events (confirmation, late fees)
//   - Tracking invoice residuals as payments settle them
//   - Recording posted payments and their allocation references
//
// Key Aggregates:
//   - Invoice: A posted receivable with a residual that decreases as payments land
//   - Payment: Immutable record of money received against a contract
//
// The billing domain integrates with:
//   - Contract domain: Invoices originate from contract lifecycle events and
//     fee accruals; payment allocation updates invoice residuals
package billing
