package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// PollStatus 投票状态，只有 open 和 closed 两种
type PollStatus string

const (
	PollOpen   PollStatus = "open"
	PollClosed PollStatus = "closed"
)

// Closed 是否已关闭
func (s PollStatus) Closed() bool {
	return s == PollClosed
}

// Valid 是否为已知状态
func (s PollStatus) Valid() bool {
	return s == PollOpen || s == PollClosed
}

func statusFromBool(closed bool) PollStatus {
	if closed {
		return PollClosed
	}
	return PollOpen
}

func parseStatus(v string) (PollStatus, error) {
	switch PollStatus(v) {
	case PollOpen, PollClosed:
		return PollStatus(v), nil
	case "":
		return PollOpen, nil
	}
	return "", fmt.Errorf("unknown poll status %q", v)
}

// MarshalJSON 对外以布尔值输出，true 表示已关闭
func (s PollStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Closed())
}

// UnmarshalJSON 同时接受布尔值和 "open"/"closed"
func (s *PollStatus) UnmarshalJSON(data []byte) error {
	var closed bool
	if err := json.Unmarshal(data, &closed); err == nil {
		*s = statusFromBool(closed)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("poll status must be a boolean or string: %w", err)
	}
	parsed, err := parseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalBSONValue 文档存储中保持布尔字段，兼容已有数据
func (s PollStatus) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(s.Closed())
}

func (s *PollStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	if closed, ok := raw.BooleanOK(); ok {
		*s = statusFromBool(closed)
		return nil
	}
	if str, ok := raw.StringValueOK(); ok {
		parsed, err := parseStatus(str)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	if t == bsontype.Null {
		*s = PollOpen
		return nil
	}
	return fmt.Errorf("unsupported bson type %s for poll status", t)
}

// Poll 投票主题。Author 是创建时用户全名的冗余副本
type Poll struct {
	ID     string     `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	User   string     `gorm:"size:36;index" json:"user" bson:"user"`
	Author string     `gorm:"size:255" json:"author" bson:"author"`
	Topic  string     `gorm:"size:255;uniqueIndex;not null" json:"topic" bson:"topic"`
	Status PollStatus `gorm:"size:16;not null;default:open" json:"status" bson:"status"`
	Date   time.Time  `gorm:"index" json:"date" bson:"date"`
}

// Choice 投票选项，Votes 按时间倒序，最新的在前。Position 保持选项的提交顺序
type Choice struct {
	ID       string      `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	Poll     string      `gorm:"column:poll_id;size:36;index;not null" json:"poll" bson:"poll"`
	Value    string      `gorm:"not null" json:"value" bson:"value"`
	Position int         `gorm:"not null;default:0" json:"-" bson:"position"`
	Votes    []VoteEntry `gorm:"foreignKey:ChoiceID;constraint:OnDelete:CASCADE" json:"votes" bson:"votes"`
}

// VoteEntry 一条投票记录。关系库中 (poll_id, user_id) 唯一。
// Date 只用于排序，不对外输出
type VoteEntry struct {
	ID       string    `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	ChoiceID string    `gorm:"size:36;index;not null" json:"-" bson:"-"`
	PollID   string    `gorm:"size:36;not null;uniqueIndex:idx_vote_poll_user" json:"-" bson:"-"`
	User     string    `gorm:"column:user_id;size:36;not null;uniqueIndex:idx_vote_poll_user" json:"user" bson:"user"`
	Date     time.Time `gorm:"precision:6" json:"-" bson:"date"`
}

// HasVoter 选项中是否已有该用户的投票
func (c *Choice) HasVoter(userID string) bool {
	for _, v := range c.Votes {
		if v.User == userID {
			return true
		}
	}
	return false
}

// PollView 返回给客户端的投票视图，choices 在读取时拼装
type PollView struct {
	ID      string     `json:"_id"`
	Topic   string     `json:"topic"`
	Author  string     `json:"author"`
	Use     string     `json:"use"`
	Status  PollStatus `json:"status"`
	Date    time.Time  `json:"date"`
	Choices []Choice   `json:"choices"`
}

// NewPollView 组装视图，nil choices 输出为空数组
func NewPollView(p *Poll, choices []Choice) PollView {
	if choices == nil {
		choices = []Choice{}
	}
	for i := range choices {
		if choices[i].Votes == nil {
			choices[i].Votes = []VoteEntry{}
		}
	}
	return PollView{
		ID:      p.ID,
		Topic:   p.Topic,
		Author:  p.Author,
		Use:     p.User,
		Status:  p.Status,
		Date:    p.Date,
		Choices: choices,
	}
}
