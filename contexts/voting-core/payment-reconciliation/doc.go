// Package paymentreconciliation implements the vote-and-payment
// reconciliation engine inside the voting-core context.
//
// The module ties a gateway payment attempt to a vote credit: it creates the
// pending transaction, obtains the gateway authorization URL, and settles the
// outcome on verification. Marking a transaction successful and crediting the
// candidate happen in one atomic unit conditioned on the row still being
// pending, so retried callbacks and racing verifications credit exactly once.
package paymentreconciliation
