package auth

// Action 业务动作。各接口统一走 Policy.Allow 判定，
// 不在 handler 里散落角色列表比较。
type Action string

const (
	ActionCatalogWrite   Action = "catalog:write"   // 目录类实体的增删改
	ActionCatalogReorder Action = "catalog:reorder" // 调整显示顺序
	ActionContentWrite   Action = "content:write"   // 博客/横幅/视频
	ActionContactRead    Action = "contact:read"
	ActionUserManage     Action = "user:manage"
	ActionUpload         Action = "upload"
)

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleUser   = "user"
)

type Policy struct {
	rules map[Action]map[string]struct{}
}

// DefaultPolicy 角色规则表。admin 全权；seller 可维护目录与内容。
func DefaultPolicy() *Policy {
	p := &Policy{rules: make(map[Action]map[string]struct{})}
	grant := func(a Action, roles ...string) {
		set := make(map[string]struct{}, len(roles))
		for _, r := range roles {
			set[r] = struct{}{}
		}
		p.rules[a] = set
	}
	grant(ActionCatalogWrite, RoleAdmin, RoleSeller)
	grant(ActionCatalogReorder, RoleAdmin, RoleSeller)
	grant(ActionContentWrite, RoleAdmin, RoleSeller)
	grant(ActionContactRead, RoleAdmin, RoleSeller)
	grant(ActionUserManage, RoleAdmin)
	grant(ActionUpload, RoleAdmin, RoleSeller)
	return p
}

func (p *Policy) Allow(role string, a Action) bool {
	set, ok := p.rules[a]
	if !ok {
		return false
	}
	_, ok = set[role]
	return ok
}
