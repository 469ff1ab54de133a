// Package stream provides the DynamoDB Streams handler for the content table.
//
// Every inserted or modified record is decoded and its stored keys are
// checked against the keys its attributes derive; drift is logged, not
// repaired. A record whose TTL is newly set expires its children.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/jacentio/valnk/internal/keys"
	"github.com/jacentio/valnk/model"
	"github.com/jacentio/valnk/store"
)

// Handler processes DynamoDB stream events for key audits and cascade deletes.
type Handler struct {
	store    *store.Store
	registry *store.Registry
	logger   *slog.Logger
}

// NewHandler creates a new stream handler. Relationships come from the
// store's registry, or store.DefaultRegistry when it has none.
func NewHandler(s *store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	registry := store.DefaultRegistry()
	if s != nil && s.Registry() != nil {
		registry = s.Registry()
	}
	return &Handler{
		store:    s,
		registry: registry,
		logger:   logger,
	}
}

// HandleStream processes DynamoDB stream events.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleStream(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "INSERT" && record.EventName != "MODIFY" {
		return nil
	}
	if getStringAttr(record.Change.NewImage, model.EntityTypeAttr) == "" {
		h.logger.Warn("stream record without entity type",
			"eventID", record.EventID,
		)
		return nil
	}
	image := ConvertImage(record.Change.NewImage)
	h.audit(record.EventID, image)

	oldTTL := getNumberAttr(record.Change.OldImage, store.TTLAttr)
	newTTL := getNumberAttr(record.Change.NewImage, store.TTLAttr)

	// Only cascade when TTL is newly set (was absent/0, now present)
	if record.EventName != "MODIFY" || oldTTL != 0 || newTTL == 0 {
		return nil
	}
	return h.cascade(ctx, image, newTTL)
}

// audit logs records whose stored keys no longer match their attributes.
func (h *Handler) audit(eventID string, image store.Item) {
	rec, err := model.DecodeRecord(image)
	if err != nil {
		h.logger.Warn("undecodable record in stream",
			"eventID", eventID,
			"pk", getStringAttrValue(image, keys.Table.PartitionAttr),
			"error", err,
		)
		return
	}
	if err := rec.VerifyKeys(); err != nil {
		h.logger.Warn("stored keys drifted from attributes",
			"eventID", eventID,
			"entityType", rec.EntityType(),
			"pk", rec.PrimaryKey().Partition,
			"error", err,
		)
	}
}

// cascade sets ttl on every live child of the deleted record.
func (h *Handler) cascade(ctx context.Context, image store.Item, ttl int64) error {
	parentType, err := model.ItemType(image)
	if err != nil {
		return fmt.Errorf("cascade: %w", err)
	}
	pk := getStringAttrValue(image, keys.Table.PartitionAttr)

	h.logger.Info("processing cascade delete",
		"entityType", parentType,
		"pk", pk,
		"ttl", ttl,
	)

	total := 0
	for _, rel := range h.registry.ChildrenOf(parentType) {
		in, err := rel.ChildScope(image)
		if err != nil {
			return fmt.Errorf("cascade %s: %w", rel.ChildType, err)
		}
		in.Limit = aws.Int32(h.store.Config().MaxPageSize)

		for {
			page, err := h.store.ListRaw(ctx, rel.Selector, in)
			if err != nil {
				return fmt.Errorf("list %s children: %w", rel.ChildType, err)
			}
			for _, child := range page.Items {
				key, ok := primaryKeyOf(child)
				if !ok {
					h.logger.Warn("child without primary key",
						"parent", pk,
						"childType", rel.ChildType,
					)
					continue
				}
				if err := h.store.SetTTLByKey(ctx, key, ttl); err != nil {
					h.logger.Warn("failed to set TTL on child",
						"child", key.Partition,
						"error", err,
					)
					// Continue - idempotent, will retry
				}
				total++
			}
			if page.NextCursor == nil {
				break
			}
			in.StartCursor = page.NextCursor
		}
	}

	h.logger.Info("cascade delete completed",
		"pk", pk,
		"childrenProcessed", total,
	)
	return nil
}

func primaryKeyOf(item store.Item) (keys.PrimaryKey, bool) {
	key := keys.PrimaryKey{
		Partition: getStringAttrValue(item, keys.Table.PartitionAttr),
		Sort:      getStringAttrValue(item, keys.Table.SortAttr),
	}
	return key, key.Partition != "" && key.Sort != ""
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}
