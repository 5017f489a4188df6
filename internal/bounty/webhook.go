package bounty

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/gitbounty/internal/ledger"
	"github.com/hitoshi/gitbounty/internal/model"
	"github.com/hitoshi/gitbounty/internal/money"
)

// PullRequestEvent はGitHubのpull_request Webhookペイロード。
// 必要なフィールドのみデコードする。
type PullRequestEvent struct {
	Action      string       `json:"action"`
	PullRequest *PullRequest `json:"pull_request"`
}

// PullRequest はペイロード中のプルリクエスト情報。
type PullRequest struct {
	ID     int64             `json:"id"`
	Body   string            `json:"body"`
	Merged bool              `json:"merged"`
	User   PullRequestAuthor `json:"user"`
}

// PullRequestAuthor はプルリクエストの作成者情報。
type PullRequestAuthor struct {
	Login string `json:"login"`
}

// Outcome はWebhook処理の結果種別を表す。
type Outcome string

const (
	// OutcomeNoPullRequest はpull_requestキーを持たないペイロードへの応答。
	// 互換性のため元のAPIのセンチネル値"FAIL"をそのまま使う。
	OutcomeNoPullRequest Outcome = "FAIL"
	// OutcomeIgnored は処理対象外のアクションへの明示的なno-op応答。
	OutcomeIgnored Outcome = "IGNORED"
	// OutcomeTransaction は台帳トランザクションを作成・更新した応答。
	OutcomeTransaction Outcome = "TRANSACTION"
)

// Result はWebhook処理の結果を表す。
// OutcomeがOutcomeTransactionの場合のみTransactionが設定される。
type Result struct {
	Outcome     Outcome
	Transaction *ledger.Transaction
}

// issueRefPattern はPR本文からissue参照（#123）を抽出するパターン。
var issueRefPattern = regexp.MustCompile(`#(\d+)`)

// HandlePullRequest はpull_request Webhookイベントを処理する。
//
//	opened: 投稿者の台帳ユーザーを解決し、pending状態のクレジット
//	        トランザクションを作成する（reference = PR ID）。
//	closed: referenceでトランザクションを再検索し、マージ済みなら確定、
//	        未マージなら失敗にする。マージ済みの場合のみ報奨金レコードを削除する。
//	その他: 何もしない（OutcomeIgnored）。
func (s *Service) HandlePullRequest(ctx context.Context, event *PullRequestEvent) (*Result, error) {
	if event == nil || event.PullRequest == nil {
		return &Result{Outcome: OutcomeNoPullRequest}, nil
	}

	if s.metrics != nil {
		s.metrics.RecordWebhookEvent(event.Action)
	}

	switch event.Action {
	case "opened":
		return s.handleOpened(ctx, event.PullRequest)
	case "closed":
		return s.handleClosed(ctx, event.PullRequest)
	default:
		slog.Info("処理対象外のWebhookアクションを無視します",
			slog.String("action", event.Action),
			slog.Int64("pr_id", event.PullRequest.ID),
		)
		return &Result{Outcome: OutcomeIgnored}, nil
	}
}

// handleOpened はPRオープン時にpendingクレジットトランザクションを作成する。
func (s *Service) handleOpened(ctx context.Context, pr *PullRequest) (*Result, error) {
	userIdentifier, err := s.resolveSubmitter(ctx, pr.User.Login)
	if err != nil {
		return nil, err
	}

	amount, _ := s.bountyAmount(ctx, pr.Body)
	reference := strconv.FormatInt(pr.ID, 10)

	tx, err := s.ledger.CreateCreditTransaction(ctx, userIdentifier,
		money.ToCents(amount, 0), s.currency, "pending", reference)
	if err != nil {
		return nil, fmt.Errorf("トランザクションの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTransactionCreated()
	}
	slog.Info("報奨金トランザクションを作成しました",
		slog.String("tx_id", tx.ID),
		slog.String("reference", reference),
		slog.String("amount", amount.String()),
	)

	return &Result{Outcome: OutcomeTransaction, Transaction: tx}, nil
}

// handleClosed はPRクローズ時にトランザクションを確定または失敗にする。
// マージ済みの場合のみ、対応する報奨金レコードをissue URLで削除する。
func (s *Service) handleClosed(ctx context.Context, pr *PullRequest) (*Result, error) {
	reference := strconv.FormatInt(pr.ID, 10)

	txs, err := s.ledger.ListTransactionsByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("トランザクションの検索に失敗しました: %w", err)
	}
	if len(txs) == 0 {
		return nil, model.NewTransactionNotFoundError(reference)
	}

	var tx *ledger.Transaction
	if pr.Merged {
		tx, err = s.ledger.ConfirmTransaction(ctx, txs[0].ID)
		if err != nil {
			return nil, fmt.Errorf("トランザクションの確定に失敗しました: %w", err)
		}
		if s.metrics != nil {
			s.metrics.RecordTransactionConfirmed()
		}
		s.closeBounty(ctx, pr.Body)
	} else {
		tx, err = s.ledger.FailTransaction(ctx, txs[0].ID)
		if err != nil {
			return nil, fmt.Errorf("トランザクションの失敗処理に失敗しました: %w", err)
		}
		if s.metrics != nil {
			s.metrics.RecordTransactionFailed()
		}
	}

	slog.Info("報奨金トランザクションをクローズしました",
		slog.String("tx_id", tx.ID),
		slog.String("reference", reference),
		slog.Bool("merged", pr.Merged),
	)

	return &Result{Outcome: OutcomeTransaction, Transaction: tx}, nil
}

// resolveSubmitter はGitHubログイン名を台帳プロバイダのユーザーに解決し、
// トランザクション作成に使うidentifierを返す。
// ローカルに紐付けがない場合はプロバイダユーザーを新規作成して紐付けを保存する。
// 紐付けが古くなっている場合（プロバイダ側で消えている場合）は作り直して修復する。
func (s *Service) resolveSubmitter(ctx context.Context, login string) (string, error) {
	if login == "" {
		return "", model.NewValidationError("pull_request", "Pull request has no submitter login.")
	}

	local, err := s.userRepo.FindByUsername(ctx, login)
	if err != nil {
		return "", fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	if local != nil {
		providerUser, err := s.ledger.GetUserByIdentifier(ctx, local.Identifier)
		if err == nil {
			return providerUser.Identifier, nil
		}

		// プロバイダ側に存在しない場合は作り直し、ローカルの紐付けを更新する
		created, err := s.ledger.CreateUser(ctx)
		if err != nil {
			return "", fmt.Errorf("プロバイダユーザーの作成に失敗しました: %w", err)
		}
		if err := s.userRepo.UpdateIdentifier(ctx, local.ID, normalizeIdentifier(created.Identifier)); err != nil {
			return "", fmt.Errorf("ユーザー紐付けの更新に失敗しました: %w", err)
		}
		slog.Warn("古いユーザー紐付けを修復しました",
			slog.String("username", login),
		)
		return created.Identifier, nil
	}

	created, err := s.ledger.CreateUser(ctx)
	if err != nil {
		return "", fmt.Errorf("プロバイダユーザーの作成に失敗しました: %w", err)
	}
	user := &model.User{
		ID:         uuid.NewString(),
		Identifier: normalizeIdentifier(created.Identifier),
		Username:   login,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", fmt.Errorf("ユーザー紐付けの保存に失敗しました: %w", err)
	}
	return created.Identifier, nil
}

// bountyAmount はPR本文のissue参照から報奨金額を解決する。
// 参照がない場合、または報奨金レコードがない場合はデフォルトの1を返す。
// 2番目の戻り値は一致した報奨金のissue URL（ない場合は空）。
func (s *Service) bountyAmount(ctx context.Context, body string) (decimal.Decimal, string) {
	issueNr, ok := extractIssueNumber(body)
	if !ok {
		return decimal.NewFromInt(1), ""
	}

	bounty, err := s.bountyRepo.FindByIssueNr(ctx, issueNr)
	if err != nil {
		slog.Error("報奨金の検索に失敗しました",
			slog.Int("issue_nr", issueNr),
			slog.String("error", err.Error()),
		)
		return decimal.NewFromInt(1), ""
	}
	if bounty == nil {
		return decimal.NewFromInt(1), ""
	}
	return bounty.Amount, bounty.URL
}

// closeBounty はPR本文のissue参照に対応する報奨金レコードを削除する。
// 削除失敗はログのみでWebhook応答には影響させない。
func (s *Service) closeBounty(ctx context.Context, body string) {
	issueNr, ok := extractIssueNumber(body)
	if !ok {
		return
	}

	bounty, err := s.bountyRepo.FindByIssueNr(ctx, issueNr)
	if err != nil || bounty == nil {
		return
	}

	deleted, err := s.bountyRepo.DeleteByURL(ctx, bounty.URL)
	if err != nil {
		slog.Error("報奨金の削除に失敗しました",
			slog.String("url", bounty.URL),
			slog.String("error", err.Error()),
		)
		return
	}
	if deleted {
		slog.Info("報奨金レコードを削除しました",
			slog.Int("issue_nr", issueNr),
			slog.String("url", bounty.URL),
		)
	}
}

// extractIssueNumber はPR本文から最初の「#<数字>」参照を抽出する。
func extractIssueNumber(body string) (int, bool) {
	match := issueRefPattern.FindStringSubmatch(body)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// normalizeIdentifier はプロバイダのユーザーUUIDを32桁のhex文字列に正規化する。
// UUIDとして解釈できない場合はそのまま返す。
func normalizeIdentifier(identifier string) string {
	parsed, err := uuid.Parse(identifier)
	if err != nil {
		return identifier
	}
	return hex.EncodeToString(parsed[:])
}
