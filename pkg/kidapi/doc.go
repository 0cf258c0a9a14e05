// Package kidapi 学习平台后端的 REST 契约：请求/响应结构与路径常量。
// learner 客户端与 mockapi 假后端共用本包，保证两端字段一致。
package kidapi
