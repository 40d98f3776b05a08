package runtime

import (
	"edusmarthub/domain"
	"edusmarthub/errors"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type inbound struct {
	Type domain.CommandType `json:"event"`
	Data json.RawMessage    `json:"data"`
}

type decoder func(data json.RawMessage) (domain.Command, error)

var decoders = map[domain.CommandType]decoder{
	domain.CmdStartExamProctoring:     decodeAs[domain.StartExamCommand],
	domain.CmdEndExamProctoring:       decodeAs[domain.EndExamCommand],
	domain.CmdProctoringAlert:         decodeAs[domain.ReportAlertCommand],
	domain.CmdGetProctoringAlerts:     decodeAs[domain.GetAlertsCommand],
	domain.CmdAcknowledgeAlert:        decodeAs[domain.AcknowledgeAlertCommand],
	domain.CmdJoinClassroomMonitoring: decodeAs[domain.JoinClassroomCommand],
	domain.CmdStudentActivity:         decodeAs[domain.StudentActivityCommand],
	domain.CmdTeacherAction:           decodeAs[domain.TeacherActionCommand],
	domain.CmdGetClassroomStatus:      decodeAs[domain.GetClassroomStatusCommand],
}

// Decode turns a client frame {"event": "...", "data": {...}} into a validated command.
// Internal commands such as participant_left cannot be decoded.
func Decode(raw []byte) (domain.Command, error) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: malformed frame: %v", errors.ErrValidation, err)
	}
	decode, ok := decoders[in.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, in.Type)
	}
	return decode(in.Data)
}

func decodeAs[T domain.Command](data json.RawMessage) (domain.Command, error) {
	var cmd T
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrValidation, cmd.Type(), err)
	}
	if err := Validate(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Validate checks the struct tags of a command.
func Validate(cmd domain.Command) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrValidation, cmd.Type(), err)
	}
	return nil
}
