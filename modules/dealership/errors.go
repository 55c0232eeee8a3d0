package dealership

import "errors"

var (
	// ErrInvalidInventoryStatus is returned for a status other than IN
	// or OUT.
	ErrInvalidInventoryStatus = errors.New("dealership.invalid_inventory_status")

	// ErrInvalidPaymentType is returned for a payment type other than
	// purchase or selling.
	ErrInvalidPaymentType = errors.New("dealership.invalid_payment_type")

	// ErrInvalidInvoiceStatus is returned for an unknown invoice status.
	ErrInvalidInvoiceStatus = errors.New("dealership.invalid_invoice_status")

	// ErrInvoiceNumberRequired is returned when an invoice is created
	// without a number.
	ErrInvoiceNumberRequired = errors.New("dealership.invoice_number_required")
)
