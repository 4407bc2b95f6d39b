// Package api 定義誰是臥底後端的 HTTP 路由與處理器。
//
// 路由分成三層：公開路由（註冊、登入、WebSocket 升級）、
// 登入後的遊戲路由（房間、對局、排行榜），以及僅限管理員的
// 題庫與 AI 玩家管理路由。處理器只負責參數綁定與錯誤轉換，
// 遊戲規則都在 service 層。
package api
