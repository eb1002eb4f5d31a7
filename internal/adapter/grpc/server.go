package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/simaogato/wealthflow-valuation/internal/adapter/presenter"
	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// OwnerValuator values every account of an owner
type OwnerValuator interface {
	ValuateOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Valuation, error)
}

// Server implements the ValuationService gRPC server
type Server struct {
	Valuator OwnerValuator
	log      zerolog.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(valuator OwnerValuator, log zerolog.Logger) *Server {
	return &Server{
		Valuator: valuator,
		log:      log.With().Str("component", "grpc").Logger(),
	}
}

// Valuate handles the Valuate RPC
func (s *Server) Valuate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	// Parse owner ID
	ownerID, err := uuid.Parse(strings.TrimSpace(req.GetValue()))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid owner id format: %v", err)
	}

	// Call usecase service
	valuation, err := s.Valuator.ValuateOwner(ctx, ownerID)
	if err != nil {
		mapped := mapError(err)
		if status.Code(mapped) == codes.Internal {
			s.log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("valuation failed")
		}
		return nil, mapped
	}

	// Build response
	resp, err := toStruct(presenter.NewValuationResponse(valuation))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode valuation")
		return nil, status.Error(codes.Internal, "failed to encode valuation")
	}
	return resp, nil
}

// toStruct converts a JSON-tagged value into a structpb.Struct of the same shape
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return structpb.NewStruct(m)
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "valuation timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "valuation canceled")
	}

	// Default to Internal error for unknown errors, without leaking details
	return status.Error(codes.Internal, "internal error")
}
