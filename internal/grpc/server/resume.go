package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"resume-parser/internal/grpc/interceptors"
	"resume-parser/pkg/models"
)

// document reads the filename and base64 content fields of a request
func (s *Server) document(req *structpb.Struct) (string, []byte, error) {
	fields := req.GetFields()

	filename := filepath.Base(fields["filename"].GetStringValue())
	if filename == "" || filename == "." {
		return "", nil, status.Error(codes.InvalidArgument, "filename is required")
	}

	encoded := fields["content"].GetStringValue()
	if encoded == "" {
		return "", nil, status.Error(codes.InvalidArgument, "content is required")
	}

	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, status.Error(codes.InvalidArgument, "content must be base64 encoded")
	}

	if limit := s.cfg.Parser.MaxUploadBytes; limit > 0 && int64(len(content)) > limit {
		return "", nil, status.Errorf(codes.ResourceExhausted, "document exceeds %d bytes", limit)
	}

	return filename, content, nil
}

// resumeValue renders ResumeData with its JSON field names
func resumeValue(data *models.ResumeData) (*structpb.Value, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return structpb.NewStructValue(st), nil
}

func response(ctx context.Context, startTime time.Time, fields map[string]*structpb.Value) *structpb.Struct {
	fields["success"] = structpb.NewBoolValue(true)
	fields["request_id"] = structpb.NewStringValue(interceptors.RequestIDFromContext(ctx))
	fields["processing_time_ms"] = structpb.NewNumberValue(float64(time.Since(startTime).Milliseconds()))
	return &structpb.Struct{Fields: fields}
}

// ParseResume implements ResumeParser.ParseResume
func (s *Server) ParseResume(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	startTime := time.Now()

	filename, content, err := s.document(req)
	if err != nil {
		return nil, err
	}

	result, err := s.svc.ParseResume(ctx, content, filename)
	if err != nil {
		return nil, toStatus(err)
	}

	resumeVal, err := resumeValue(result.Resume)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode resume: %v", err))
	}

	fields := map[string]*structpb.Value{
		"resume": resumeVal,
	}
	if req.GetFields()["include_markdown"].GetBoolValue() {
		fields["markdown"] = structpb.NewStringValue(result.Markdown)
	}

	return response(ctx, startTime, fields), nil
}

// ConvertDocument implements ResumeParser.ConvertDocument
func (s *Server) ConvertDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	startTime := time.Now()

	filename, content, err := s.document(req)
	if err != nil {
		return nil, err
	}

	markdown, err := s.svc.ConvertDocument(ctx, content, filename)
	if err != nil {
		return nil, toStatus(err)
	}

	return response(ctx, startTime, map[string]*structpb.Value{
		"markdown": structpb.NewStringValue(markdown),
	}), nil
}

// ExtractResume implements ResumeParser.ExtractResume
func (s *Server) ExtractResume(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	startTime := time.Now()

	markdown := req.GetFields()["markdown"].GetStringValue()
	if markdown == "" {
		return nil, status.Error(codes.InvalidArgument, "markdown is required")
	}

	data, err := s.svc.ParseResumeToJSON(ctx, markdown)
	if err != nil {
		return nil, toStatus(err)
	}

	resumeVal, err := resumeValue(data)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode resume: %v", err))
	}

	return response(ctx, startTime, map[string]*structpb.Value{
		"resume": resumeVal,
	}), nil
}
