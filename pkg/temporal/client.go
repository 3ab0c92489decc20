package temporal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GareBear99/admension/pkg/utils"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	taskqueuepb "go.temporal.io/api/taskqueue/v1"
	workflowservicepb "go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"
)

type Client struct {
	TClient   client.Client
	TSClient  client.ScheduleClient
	Namespace string

	// Task Queues
	SettlementQueue string // settlement - ledger computation runs, scheduled and ad hoc.

	// Schedule IDs
	MonthlyScheduleID string

	// Workflow IDs
	SettlementWorkflowId string // settlement:<tag>, one run history per settlement period.
}

type Health struct {
	ConnectionOK    bool                      `json:"connection_ok"`
	SettlementQueue []*taskqueuepb.PollerInfo `json:"settlement_queue"`
}

func NewClient(ctx context.Context, logger *zap.Logger) (*Client, error) {
	host := utils.Env("TEMPORAL_HOSTPORT", "localhost:7233")
	ns := utils.Env("TEMPORAL_NAMESPACE", "admension")
	loggerWrapper := NewZapAdapter(logger)

	logger.Info("Connecting to Temporal", zap.String("host", host), zap.String("namespace", ns))
	tClient, err := Dial(ctx, host, ns, loggerWrapper)
	if err != nil {
		return nil, err
	}

	if _, err = tClient.CheckHealth(ctx, nil); err != nil {
		return nil, err
	}

	return &Client{
		TClient:              tClient,
		TSClient:             tClient.ScheduleClient(),
		Namespace:            ns,
		SettlementQueue:      "settlement",
		MonthlyScheduleID:    "settlement:monthly",
		SettlementWorkflowId: "settlement:%s",
	}, nil
}

// Dial connects to Temporal using the provided hostPort and namespace.
func Dial(ctx context.Context, hostPort, namespace string, logger log.Logger) (client.Client, error) {
	return client.DialContext(
		ctx,
		client.Options{
			HostPort:  hostPort,
			Namespace: namespace,
			Logger:    logger,
		},
	)
}

// GetSettlementWorkflowId returns the workflow ID for the given period tag.
func (c *Client) GetSettlementWorkflowId(tag string) string {
	return fmt.Sprintf(c.SettlementWorkflowId, tag)
}

// MonthlySpec fires shortly after each month rolls over, leaving time for the
// previous month's partitions to settle before the run reads them.
func (c *Client) MonthlySpec() client.ScheduleSpec {
	return client.ScheduleSpec{
		Calendars: []client.ScheduleCalendarSpec{{
			DayOfMonth: []client.ScheduleRange{{Start: 1}},
			Hour:       []client.ScheduleRange{{Start: 6}},
		}},
	}
}

// EnsureNamespace registers the client's namespace if it does not exist yet.
func EnsureNamespace(ctx context.Context, logger *zap.Logger, retention time.Duration) error {
	host := utils.Env("TEMPORAL_HOSTPORT", "localhost:7233")
	ns := utils.Env("TEMPORAL_NAMESPACE", "admension")

	nsClient, err := client.NewNamespaceClient(client.Options{HostPort: host})
	if err != nil {
		return fmt.Errorf("failed to create namespace client: %w", err)
	}
	defer nsClient.Close()

	err = nsClient.Register(ctx, &workflowservicepb.RegisterNamespaceRequest{
		Namespace:                        ns,
		WorkflowExecutionRetentionPeriod: durationpb.New(retention),
	})
	if err != nil {
		var alreadyExists *serviceerror.NamespaceAlreadyExists
		if errors.As(err, &alreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to register namespace %s: %w", ns, err)
	}

	logger.Info("Registered Temporal namespace", zap.String("namespace", ns), zap.Duration("retention", retention))
	return nil
}

// Health returns the health of the Temporal client.
func (c *Client) Health(ctx context.Context) (Health, error) {
	h := Health{ConnectionOK: true}
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	svc := c.TClient.WorkflowService()
	if svc != nil {
		if rep, err := svc.DescribeTaskQueue(ctx, &workflowservicepb.DescribeTaskQueueRequest{
			Namespace:     c.Namespace,
			TaskQueue:     &taskqueuepb.TaskQueue{Name: c.SettlementQueue},
			TaskQueueType: enums.TASK_QUEUE_TYPE_WORKFLOW,
		}); err == nil {
			h.SettlementQueue = rep.GetPollers()
		}
	}
	return h, nil
}
