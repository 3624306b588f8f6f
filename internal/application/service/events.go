package service

import (
	"context"

	"github.com/khoahotran/usermatch/internal/domain/user"
)

type EventPublisher interface {
	PublishUserEvent(ctx context.Context, ev user.Event) error
}
