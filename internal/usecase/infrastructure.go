package usecase

import "context"

// TxManager выполняет fn в одной транзакции, транзакция передаётся через ctx.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type ExportStorage interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
