package out

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	hookrpc "studytrack/internal/modules/hook/adapter/out/rpc"
	"studytrack/internal/modules/hook/domain"
	hookout "studytrack/internal/modules/hook/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost launches a hook binary per call and talks to it over go-plugin.
type GRPCHost struct {
	logger hclog.Logger
}

func NewGRPCHost(logger hclog.Logger) hookout.Host {
	return &GRPCHost{logger: logger.Named("hook-host")}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	events := make([]domain.Event, 0, len(meta.Events))
	for _, e := range meta.Events {
		events = append(events, domain.Event(e))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Events: events}, nil
}

func (h *GRPCHost) DayClosed(ctx context.Context, manifest domain.Manifest, event domain.DayClosed) (domain.Ack, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return domain.Ack{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	req := &hookrpc.DayClosedRequest{
		UserID:       event.UserID,
		Date:         event.Date,
		TotalSeconds: event.TotalSeconds,
		Archived:     int32(event.Archived),
		ClosedAt:     event.ClosedAt.UTC().Format(time.RFC3339),
	}
	for _, st := range event.Subjects {
		req.Subjects = append(req.Subjects, hookrpc.SubjectTotal{Name: st.Name, Tag: st.Tag, Seconds: st.Seconds})
	}
	ack, err := client.DayClosed(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return domain.Ack{}, fmt.Errorf("%w: %s", domain.ErrHookTimeout, manifest.Name)
		}
		return domain.Ack{}, fmt.Errorf("deliver day_closed: %w", err)
	}
	return domain.Ack{Accepted: ack.Accepted, Message: ack.Message}, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest, startTimeout time.Duration) (hookrpc.HookClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  hookrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          hookrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           h.logger.With("hook", manifest.Name),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start hook client: %w", err)
	}
	raw, err := rpcClient.Dispense(hookrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense hook: %w", err)
	}
	typed, ok := raw.(hookrpc.HookClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("hook rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
