package store

import "context"

// RunForVisitor wraps ctx with the visitor key and calls fn inside the provided TxRunner
func RunForVisitor(ctx context.Context, tx TxRunner, visitor string, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithVisitor(ctx, visitor)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}

// RunAsAdmin wraps ctx as an admin caller and calls fn inside the provided TxRunner
func RunAsAdmin(ctx context.Context, tx TxRunner, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithAdmin(ctx)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}
