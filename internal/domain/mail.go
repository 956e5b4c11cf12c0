package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const MailTypeSolveFinished = "solve_finished"

type SolveFinishedMailData struct {
	JobID        string  `json:"jobID"`
	InstanceName string  `json:"instanceName"`
	Status       string  `json:"status"`
	StopReason   string  `json:"stopReason"`
	Generations  int     `json:"generations"`
	Fitness      float64 `json:"fitness"`
	EnvyFree     bool    `json:"envyFree"`
	Error        string  `json:"error"`
}
