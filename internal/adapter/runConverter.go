package adapter

import (
	"fmt"

	"github.com/surajvast1/Doc-Manager/internal/api"
	"github.com/surajvast1/Doc-Manager/internal/domain/jobModel"
	"github.com/surajvast1/Doc-Manager/internal/rag"
)

func Success(message string, data any) api.Envelope {
	return api.Envelope{Status: api.StatusSuccess, Message: message, Data: data}
}

func Failure(message string) api.Envelope {
	return api.Envelope{Status: api.StatusError, Message: message}
}

func ToInitRunResponse(id string) api.InitRunResponse {
	return api.InitRunResponse{
		RunId:     id,
		StatusURL: fmt.Sprintf("/runs/%s", id),
	}
}

func ToRunResponse(job jobModel.Job) api.RunResponse {
	var errorPtr *api.RunOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.RunOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	return api.RunResponse{
		Id:          job.Id,
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		Report:      job.Report,
		Error:       errorPtr,
		StartTime:   job.CreatedTime,
		EndTime:     job.EndTime,
	}
}

func ToAnswerResponse(question string, answer rag.Answer) api.AnswerResponse {
	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return api.AnswerResponse{
		Question: question,
		Answer:   answer.Answer,
		Sources:  sources,
	}
}
