package api

// Event is one recorded usage of a service action.
type Event struct {
	// Name is events/{event}, assigned by the server.
	Name              string     `json:"name,omitempty"`
	Subject           string     `json:"subject,omitempty"`
	Source            string     `json:"source,omitempty"`
	Action            string     `json:"action,omitempty"`
	ExecutionDuration *Duration  `json:"executionDuration,omitempty"`
	CreateTime        *Timestamp `json:"createTime,omitempty"`
}

type CreateEventRequest struct {
	Event *Event `json:"event,omitempty"`
}

func (r *CreateEventRequest) GetEvent() *Event {
	if r == nil {
		return nil
	}
	return r.Event
}

type CreateEventResponse struct {
	Event *Event `json:"event,omitempty"`
}

type ListEventsRequest struct {
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type ListEventsResponse struct {
	Events        []*Event `json:"events"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}
