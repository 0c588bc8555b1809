package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres SQLSTATE codes the adapter translates.
const (
	pgForeignKeyViolation = "23503"
)

var errDirectExists = errors.New("direct conversation already exists")

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) ready() error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	return nil
}

func (r *PgChatRepository) GetConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id, is_group, name, direct_key, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`, id).Scan(&c.ID, &c.IsGroup, &c.Name, &c.DirectKey, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgChatRepository) FindDirectConversations(ctx context.Context, a, b string) ([]string, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id
		FROM conversations c
		JOIN conversation_members m ON m.conversation_id = c.id
		WHERE c.is_group = FALSE
		  AND c.id IN (
			SELECT conversation_id FROM conversation_members WHERE user_id = $1
		  )
		GROUP BY c.id
		HAVING COUNT(*) = 2
		   AND COUNT(*) FILTER (WHERE m.user_id IN ($1, $2)) = 2
		ORDER BY c.id ASC
	`, a, b)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PgChatRepository) CreateDirectConversation(ctx context.Context, c chat.Conversation, a, b string) (string, bool, error) {
	if err := r.ready(); err != nil {
		return "", false, err
	}
	if c.DirectKey == nil {
		return "", false, errors.New("PgChatRepository: direct conversation without direct_key")
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO conversations (id, is_group, name, direct_key, created_at, updated_at)
			VALUES ($1, FALSE, NULL, $2, $3, $4)
			ON CONFLICT (direct_key) DO NOTHING
			RETURNING id
		`, c.ID, *c.DirectKey, c.CreatedAt, c.UpdatedAt).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return errDirectExists
		}
		if err != nil {
			return err
		}
		role := chat.RoleMember
		for _, uid := range []string{a, b} {
			if err := insertMember(ctx, tx, chat.NewMember(c.ID, uid, role, c.CreatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case err == nil:
		return c.ID, true, nil
	case errors.Is(err, errDirectExists):
		var existing string
		err := r.pool.QueryRow(ctx, `SELECT id FROM conversations WHERE direct_key = $1`, *c.DirectKey).Scan(&existing)
		if err != nil {
			return "", false, err
		}
		return existing, false, nil
	default:
		return "", false, translate(err)
	}
}

func (r *PgChatRepository) CreateGroupConversation(ctx context.Context, c chat.Conversation, members []chat.Member) error {
	if err := r.ready(); err != nil {
		return err
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversations (id, is_group, name, direct_key, created_at, updated_at)
			VALUES ($1, TRUE, $2, NULL, $3, $4)
		`, c.ID, c.Name, c.CreatedAt, c.UpdatedAt); err != nil {
			return err
		}
		for _, m := range members {
			if err := insertMember(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func insertMember(ctx context.Context, tx pgx.Tx, m chat.Member) error {
	var role *string
	if m.Role != nil {
		s := string(*m.Role)
		role = &s
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO conversation_members (conversation_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (conversation_id, user_id) DO NOTHING
	`, m.ConversationID, m.UserID, role, m.JoinedAt)
	return err
}

func (r *PgChatRepository) IsMember(ctx context.Context, conversationID, userID string) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_members
			WHERE conversation_id = $1 AND user_id = $2
		)
	`, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *PgChatRepository) ListMemberIDs(ctx context.Context, conversationID string) ([]string, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM conversation_members
		WHERE conversation_id = $1
		ORDER BY joined_at ASC, user_id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PgChatRepository) ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.is_group, c.name, c.direct_key, c.created_at, c.updated_at
		FROM conversations c
		JOIN conversation_members m ON m.conversation_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.updated_at DESC, c.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chat.ConversationSummary, 0)
	index := make(map[string]int)
	ids := make([]string, 0)
	for rows.Next() {
		var c chat.Conversation
		if err := rows.Scan(&c.ID, &c.IsGroup, &c.Name, &c.DirectKey, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		index[c.ID] = len(out)
		ids = append(ids, c.ID)
		out = append(out, chat.ConversationSummary{Conversation: c, Members: []chat.User{}})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(ids) == 0 {
		return out, nil
	}

	mrows, err := r.pool.Query(ctx, `
		SELECT m.conversation_id, u.id, u.name, u.email, u.email_verified, u.image, u.created_at, u.updated_at
		FROM conversation_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.conversation_id = ANY($1)
		ORDER BY m.joined_at ASC, u.id ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var (
			convID string
			u      chat.User
		)
		if err := mrows.Scan(&convID, &u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.Image, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[convID]; ok {
			out[i].Members = append(out[i].Members, u)
		}
	}
	if mrows.Err() != nil {
		return nil, mrows.Err()
	}
	return out, nil
}

const messageColumns = `
	id, seq, conversation_id, sender_id, content, message_type,
	media_url, media_thumbnail, media_size, media_duration, mime_type,
	created_at, updated_at, is_deleted`

func scanMessage(row pgx.Row) (chat.Message, error) {
	var (
		m       chat.Message
		msgType string
	)
	err := row.Scan(
		&m.ID, &m.Seq, &m.ConversationID, &m.SenderID, &m.Content, &msgType,
		&m.Media.URL, &m.Media.Thumbnail, &m.Media.Size, &m.Media.Duration, &m.Media.MimeType,
		&m.CreatedAt, &m.UpdatedAt, &m.IsDeleted,
	)
	m.MsgType = chat.MessageType(msgType)
	return m, err
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	if err := r.ready(); err != nil {
		return chat.Message{}, err
	}
	stored, err := scanMessage(r.pool.QueryRow(ctx, `
		INSERT INTO messages (
			id, conversation_id, sender_id, content, message_type,
			media_url, media_thumbnail, media_size, media_duration, mime_type,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+messageColumns,
		m.ID, m.ConversationID, m.SenderID, m.Content, string(m.MsgType),
		m.Media.URL, m.Media.Thumbnail, m.Media.Size, m.Media.Duration, m.Media.MimeType,
		m.CreatedAt, m.UpdatedAt,
	))
	if err != nil {
		return chat.Message{}, translate(err)
	}
	return stored, nil
}

func (r *PgChatRepository) GetMessage(ctx context.Context, conversationID, messageID string) (*chat.Message, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	m, err := scanMessage(r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1 AND id = $2
	`, conversationID, messageID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgChatRepository) SoftDeleteMessage(ctx context.Context, conversationID, messageID string, at time.Time) error {
	if err := r.ready(); err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET is_deleted = TRUE, updated_at = $3
		WHERE conversation_id = $1 AND id = $2
	`, conversationID, messageID, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgChatRepository) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	if err := r.ready(); err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE conversations
		SET updated_at = GREATEST(updated_at, $2)
		WHERE id = $1
	`, conversationID, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID string, before *chat.Cursor, limit int) ([]chat.Message, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = chat.DefaultPageSize
	}

	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case before == nil:
		rows, err = r.pool.Query(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2
		`, conversationID, limit)
	case before.Seq == 0:
		rows, err = r.pool.Query(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE conversation_id = $1 AND created_at < $2
			ORDER BY created_at DESC, seq DESC
			LIMIT $3
		`, conversationID, before.CreatedAt, limit)
	default:
		rows, err = r.pool.Query(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE conversation_id = $1 AND (created_at, seq) < ($2, $3)
			ORDER BY created_at DESC, seq DESC
			LIMIT $4
		`, conversationID, before.CreatedAt, before.Seq, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]chat.Message, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

// translate maps constraint violations onto repository errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, pgErr.ConstraintName)
	}
	return err
}
