// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package config 提供路由网关的配置管理功能。

# 概述

config 包负责应用配置的完整生命周期管理：多源加载与校验。配置按
"默认值 -> YAML 文件 -> 环境变量" 的优先级合并。

# 核心结构

  - Config: 顶层配置聚合，涵盖 Server、Redis、Database、Cache、
    Budget、Providers、JWT、Log
  - Loader: 配置加载器，支持 Builder 模式链式设置
    文件路径、环境变量前缀与自定义验证器

# 主要能力

  - 多源加载: YAML 文件、环境变量（GATEWAY_ 前缀）、默认值
  - 配置验证: 内置基础校验（端口范围、预算阈值、Provider 非空）
    以及自定义 Validate 钩子

# 使用示例

	cfg, err := config.NewLoader().
		WithConfigPath("config.yaml").
		WithEnvPrefix("GATEWAY").
		Load()
*/
package config
