package vote

// Code 投票业务失败码，前端据此展示不同提示
type Code string

const (
	CodeOwnProject     Code = "OWN_PROJECT"
	CodeNotParticipant Code = "NOT_PARTICIPANT"
	CodeVotingEnded    Code = "VOTING_ENDED"
	CodeAlreadyVoted   Code = "ALREADY_VOTED"
	CodeNotVoted       Code = "NOT_VOTED"
	CodeNoVotesLeft    Code = "NO_VOTES_LEFT"
)

var codeMessages = map[Code]string{
	CodeOwnProject:     "不能给自己或自己团队的作品投票",
	CodeNotParticipant: "只有活动参与者可以投票",
	CodeVotingEnded:    "投票已结束",
	CodeAlreadyVoted:   "已经给该作品投过票",
	CodeNotVoted:       "尚未给该作品投票",
	CodeNoVotesLeft:    "本活动的票数已用完",
}

// Result 投票/撤票的结果，业务失败不走 response.Error
type Result struct {
	Success        bool   `json:"success"`
	VoteCount      *int64 `json:"voteCount,omitempty"`
	RemainingVotes *int   `json:"remainingVotes,omitempty"`
	Error          Code   `json:"error,omitempty"`
	Message        string `json:"message,omitempty"`
}

func succeed(count int64, remaining int) Result {
	return Result{Success: true, VoteCount: &count, RemainingVotes: &remaining}
}

func fail(code Code) Result {
	return Result{Success: false, Error: code, Message: codeMessages[code]}
}

// rejection 在事务内中止并回滚，事务外还原为 Result
type rejection struct {
	code Code
}

func (r *rejection) Error() string {
	return string(r.code)
}
