package web

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/chimalongy/emailsenderserverless-sub001/internal/domain"
	"github.com/chimalongy/emailsenderserverless-sub001/internal/errs"
	"github.com/hashicorp/go-multierror"
)

// Recipients 可以是 JSON 数组，也可以是一段按行分隔的文本
type Recipients []string

func (r *Recipients) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*r = list
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("收件人必须是数组或者按行分隔的字符串: %w", err)
	}
	*r = strings.FieldsFunc(text, func(c rune) bool {
		return c == '\n' || c == '\r'
	})
	return nil
}

// NormalizeRecipients 去掉空白和重复（不区分大小写，保留第一次出现的位置），
// 所有格式不对的地址一起返回
func NormalizeRecipients(raw []string) ([]string, error) {
	res := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	var err error
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		addr, er := mail.ParseAddress(r)
		if er != nil {
			err = multierror.Append(err, fmt.Errorf("%w: 邮箱格式错误 %q", errs.ErrInvalidParameter, r))
			continue
		}
		email := domain.NormalizeEmail(addr.Address)
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		res = append(res, email)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
