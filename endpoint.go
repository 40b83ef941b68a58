package routing

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"

	"github.com/swiftlab/routing/message"
)

type EndpointSet struct {
	CreateRun        endpoint.Endpoint
	Run              endpoint.Endpoint
	ListRuns         endpoint.Endpoint
	GenerateMessages endpoint.Endpoint
	TrainModel       endpoint.Endpoint
	TestModel        endpoint.Endpoint
	RunReport        endpoint.Endpoint
	CompleteRun      endpoint.Endpoint
	Route            endpoint.Endpoint
	RouteMessage     endpoint.Endpoint
	SaveTemplate     endpoint.Endpoint
	Template         endpoint.Endpoint
	ListTemplates    endpoint.Endpoint
	DeleteTemplate   endpoint.Endpoint
}

type CreateRunRequest struct {
	Name        string
	Description string
}

func CreateRunEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(CreateRunRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		run, err := svc.CreateRun(req.Name, req.Description)
		if err != nil {
			return nil, err
		}

		return run, nil
	}
}

func RunEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		id, ok := request.(message.RunID)
		if !ok {
			return nil, errors.New("invalid request")
		}

		run, err := svc.Run(id)
		if err != nil {
			return nil, err
		}

		return run, nil
	}
}

func ListRunsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		limit, ok := request.(int)
		if !ok {
			return nil, errors.New("invalid request")
		}

		runs, err := svc.ListRuns(limit)
		if err != nil {
			return nil, err
		}

		return runs, nil
	}
}

type GenerateMessagesRequest struct {
	RunID       message.RunID
	NumMessages int
}

func GenerateMessagesEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(GenerateMessagesRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		messages, err := svc.GenerateMessages(req.RunID, req.NumMessages)
		if err != nil {
			return nil, err
		}

		return messages, nil
	}
}

type TrainModelRequest struct {
	RunID *message.RunID
}

func TrainModelEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(TrainModelRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		metrics, err := svc.TrainModel(req.RunID)
		if err != nil {
			return nil, err
		}

		return metrics, nil
	}
}

func TestModelEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		id, ok := request.(message.RunID)
		if !ok {
			return nil, errors.New("invalid request")
		}

		result, err := svc.TestModel(id)
		if err != nil {
			return nil, err
		}

		return result, nil
	}
}

func RunReportEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		id, ok := request.(message.RunID)
		if !ok {
			return nil, errors.New("invalid request")
		}

		result, err := svc.RunReport(id)
		if err != nil {
			return nil, err
		}

		return result, nil
	}
}

type CompleteRunRequest struct {
	Name        string
	Description string
	NumMessages int
	Train       bool
}

func CompleteRunEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(CompleteRunRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		result, err := svc.CompleteRun(req.Name, req.Description, req.NumMessages, req.Train)
		if err != nil {
			return nil, err
		}

		return result, nil
	}
}

type RouteRequest struct {
	Text string
}

func RouteEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(RouteRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		p, err := svc.Route(req.Text)
		if err != nil {
			return nil, err
		}

		return p, nil
	}
}

func RouteMessageEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		id, ok := request.(message.MessageID)
		if !ok {
			return nil, errors.New("invalid request")
		}

		routed, err := svc.RouteMessage(id)
		if err != nil {
			return nil, err
		}

		return routed, nil
	}
}

type SaveTemplateRequest struct {
	Type          string
	Content       string
	Description   string
	ExpectedLabel string
}

func SaveTemplateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(SaveTemplateRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		t, err := svc.SaveTemplate(req.Type, req.Content, req.Description, req.ExpectedLabel)
		if err != nil {
			return nil, err
		}

		return t, nil
	}
}

func TemplateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		mtType, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request")
		}

		t, err := svc.Template(mtType)
		if err != nil {
			return nil, err
		}

		return t, nil
	}
}

func ListTemplatesEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		templates, err := svc.ListTemplates()
		if err != nil {
			return nil, err
		}

		return templates, nil
	}
}

func DeleteTemplateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		mtType, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request")
		}

		if err := svc.DeleteTemplate(mtType); err != nil {
			return nil, err
		}

		return nil, nil
	}
}
