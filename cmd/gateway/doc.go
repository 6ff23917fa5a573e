// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 RouteForge Gateway 服务端程序入口。

# 概述

cmd/gateway 是路由网关的可执行入口，提供 HTTP API 服务、数据库迁移、
健康检查和版本查询等子命令。程序支持 YAML 配置文件加载、结构化日志
（zap）以及 Prometheus 指标采集。

# 核心类型

  - Server           — 主服务器，管理 HTTP、Metrics 双端口及优雅关闭
  - Middleware        — HTTP 中间件函数签名 func(http.Handler) http.Handler
  - responseWriter    — 包装 http.ResponseWriter 以捕获状态码

# 主要能力

  - 子命令：serve（启动服务）、migrate（数据库迁移）、version、health
  - 中间件链：Recovery、RequestID、SecurityHeaders、RequestLogger、
    MetricsMiddleware、CORS、RateLimiter（基于 IP）、APIKeyAuth；
    middleware.go 另定义 JWTAuth（Bearer token）与 ScopeRateLimiter
    （基于用户），Server 装配的中间件链不包含这两者
  - 路由装配：complexity.Analyzer、budget.Controller、cache.Manager、
    provider.Registry 在启动时一次性装配为 router.Router
  - Metrics 服务器：独立端口暴露 /metrics（Prometheus）
  - 优雅关闭：信号监听 → 关闭 HTTP → 关闭 Metrics → 关闭数据库 → Wait
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
