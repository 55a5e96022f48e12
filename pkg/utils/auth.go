package utils

import "strings"

// BearerToken 从 Authorization 头中提取 Bearer Token
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AllowList GitHub 用户名白名单，大小写不敏感
type AllowList map[string]struct{}

// NewAllowList 创建白名单
func NewAllowList(logins []string) AllowList {
	l := make(AllowList, len(logins))
	for _, login := range logins {
		if login = strings.TrimSpace(login); login != "" {
			l[strings.ToLower(login)] = struct{}{}
		}
	}
	return l
}

// Allowed 用户是否在白名单中
func (l AllowList) Allowed(login string) bool {
	_, ok := l[strings.ToLower(strings.TrimSpace(login))]
	return ok
}
