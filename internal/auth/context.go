package auth

import "context"

type customerIDKey struct{}

func ContextWithCustomerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, customerIDKey{}, id)
}

func CustomerIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(customerIDKey{}).(int64)
	return id, ok
}
