// Package remote exposes a sort.Sorter as a gRPC service and provides the client side
// backend which delegates sorting to such a service. Messages are protobuf well known
// types, a request is a google.protobuf.Struct and a reply a google.protobuf.ListValue.
package remote

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName = "msort.Sorter"
	sortMethod  = "/" + serviceName + "/Sort"

	fieldStrategy = "strategy"
	fieldWorkers  = "workers"
	fieldValues   = "values"
)

// SorterServer is the server side of the msort.Sorter service.
type SorterServer interface {
	Sort(context.Context, *structpb.Struct) (*structpb.ListValue, error)
}

func sortHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SorterServer).Sort(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: sortMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SorterServer).Sort(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var sorterServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SorterServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Sort",
			Handler:    sortHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "msort.proto",
}

// RegisterSorterServer registers srv with the gRPC server s.
func RegisterSorterServer(s grpc.ServiceRegistrar, srv SorterServer) {
	s.RegisterService(&sorterServiceDesc, srv)
}

// Request is the decoded form of a sort request.
type Request struct {
	Strategy string
	Workers  int
	Values   []float64
}

// Marshal builds the wire message of r.
func (r *Request) Marshal() *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldStrategy: structpb.NewStringValue(r.Strategy),
			fieldWorkers:  structpb.NewNumberValue(float64(r.Workers)),
			fieldValues:   structpb.NewListValue(marshalValues(r.Values)),
		},
	}
}

// Unmarshal fills r from the wire message m.
func (r *Request) Unmarshal(m *structpb.Struct) error {
	fields := m.GetFields()
	strategy, ok := fields[fieldStrategy].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return fmt.Errorf("field %q is missing or not a string", fieldStrategy)
	}
	workers, ok := fields[fieldWorkers].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return fmt.Errorf("field %q is missing or not a number", fieldWorkers)
	}
	if workers.NumberValue != math.Trunc(workers.NumberValue) {
		return fmt.Errorf("field %q must be an integer, got %v", fieldWorkers, workers.NumberValue)
	}
	list, ok := fields[fieldValues].GetKind().(*structpb.Value_ListValue)
	if !ok {
		return fmt.Errorf("field %q is missing or not a list", fieldValues)
	}
	values, err := unmarshalValues(list.ListValue)
	if err != nil {
		return err
	}
	*r = Request{
		Strategy: strategy.StringValue,
		Workers:  int(workers.NumberValue),
		Values:   values,
	}

	return nil
}

func marshalValues(values []float64) *structpb.ListValue {
	l := &structpb.ListValue{
		Values: make([]*structpb.Value, len(values)),
	}
	for i, v := range values {
		l.Values[i] = structpb.NewNumberValue(v)
	}
	return l
}

func unmarshalValues(l *structpb.ListValue) ([]float64, error) {
	values := make([]float64, len(l.GetValues()))
	for i, v := range l.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("value at index %d is not a number", i)
		}
		if math.IsNaN(n.NumberValue) {
			return nil, fmt.Errorf("value at index %d is NaN", i)
		}
		values[i] = n.NumberValue
	}
	return values, nil
}
