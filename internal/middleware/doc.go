// Package middleware 提供遊戲後端共用的 Gin 中間件。
//
// AuthMiddleware 驗證 JWT 並把玩家身份寫入請求上下文，
// AdminMiddleware 再依 token 中的角色擋下非管理員對題庫
// 與 AI 玩家管理介面的操作。
package middleware
