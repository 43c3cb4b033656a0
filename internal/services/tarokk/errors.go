package tarokk

import "fmt"

// RuleErrorCode はエンジンが返す失敗の分類です。
type RuleErrorCode string

const (
	ErrOutOfTurn     RuleErrorCode = "out_of_turn"    // 手番でないプレイヤーのコマンド
	ErrWrongPhase    RuleErrorCode = "wrong_phase"    // フェーズ外のコマンド
	ErrRuleViolation RuleErrorCode = "rule_violation" // ルール違反（ビッド不足、保護カードの捨て札など）
	ErrNotFound      RuleErrorCode = "not_found"      // カードや宣言が見つからない
)

// RuleError はエンジンの分類付きエラーです。
// すべての失敗は局所的かつ非致命的で、ゲーム状態は変更されません。
type RuleError struct {
	Code    RuleErrorCode `json:"code"`
	Message string        `json:"message"`
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func outOfTurn(position int) *RuleError {
	return &RuleError{Code: ErrOutOfTurn, Message: fmt.Sprintf("not player %d's turn", position)}
}

func wrongPhase(expected, actual GamePhase) *RuleError {
	return &RuleError{Code: ErrWrongPhase, Message: fmt.Sprintf("expected phase %s, current phase is %s", expected, actual)}
}

func ruleViolation(format string, args ...any) *RuleError {
	return &RuleError{Code: ErrRuleViolation, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *RuleError {
	return &RuleError{Code: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}
