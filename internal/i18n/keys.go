// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"

	// Subscription
	KeySubscriptionExpired   = "subscription.expired"
	KeySubscriptionRenewed   = "subscription.renewed"
	KeySubscriptionPending   = "subscription.pending"
	KeySubscriptionNotFound  = "subscription.not_found"
	KeySubscriptionInvalid   = "subscription.invalid_days"
	KeySubscriptionNoPayment = "subscription.payments_disabled"
	KeySubscriptionFailed    = "subscription.payment_failed"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductUpdated  = "product.updated"
	KeyProductDeleted  = "product.deleted"
	KeyProductNotFound = "product.not_found"
	KeyProductInUse    = "product.in_use"

	// Categories
	KeyCategoryCreated  = "category.created"
	KeyCategoryDeleted  = "category.deleted"
	KeyCategoryNotFound = "category.not_found"
	KeyCategoryExists   = "category.exists"

	// Stock
	KeyStockInsufficient = "stock.insufficient"
	KeyStockConsumed     = "stock.consumed"

	// Sales
	KeySaleRecorded = "sale.recorded"
	KeySaleUpdated  = "sale.updated"
	KeySaleDeleted  = "sale.deleted"
	KeySaleVoided   = "sale.batch_voided"
	KeySaleNotFound = "sale.not_found"

	// Receipts
	KeyReceiptRecorded = "receipt.recorded"
	KeyReceiptUpdated  = "receipt.updated"
	KeyReceiptDeleted  = "receipt.deleted"
	KeyReceiptVoided   = "receipt.batch_voided"
	KeyReceiptNotFound = "receipt.not_found"

	// Expenses
	KeyExpenseCreated  = "expense.created"
	KeyExpenseUpdated  = "expense.updated"
	KeyExpenseDeleted  = "expense.deleted"
	KeyExpenseNotFound = "expense.not_found"

	// People
	KeyPersonCreated  = "person.created"
	KeyPersonUpdated  = "person.updated"
	KeyPersonDeleted  = "person.deleted"
	KeyPersonNotFound = "person.not_found"

	// Invoices
	KeyInvoiceCreated  = "invoice.created"
	KeyInvoiceDeleted  = "invoice.deleted"
	KeyInvoiceNotFound = "invoice.not_found"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyValidationEmpty   = "validation.empty_batch"
)
