// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package migration provides versioned database schema migrations for the
gateway's budget ledger and T3 response cache tables, supporting
PostgreSQL, MySQL, and SQLite via golang-migrate.

# 概述

本包通过 embed.FS 内嵌各数据库方言的 SQL 迁移文件，结合 golang-migrate
引擎实现版本化的 Schema 变更管理，覆盖 budget_usage 与 response_cache
两张表。支持正向迁移、回滚、按步执行、跳转到指定版本以及强制设置
版本号等操作。

# 核心接口与类型

  - Migrator：迁移器接口，定义 Up/Down/DownAll/Steps/Goto/Force/
    Version/Status/Info/Close 等完整操作集。
  - DefaultMigrator：Migrator 的默认实现，封装 golang-migrate 实例
    与数据库连接管理。
  - Config：迁移配置，包含数据库类型、连接 URL、迁移表名与锁超时。
  - CLI：命令行交互层，封装 Migrator 提供格式化输出。

# 主要能力

  - 多数据库支持：通过 DatabaseType 与内嵌 SQL 文件自动适配方言。
  - 工厂函数：NewMigratorFromDatabaseConfig / NewMigratorFromURL 支持从
    不同配置源快速创建迁移器。
  - CLI 集成：RunUp/RunDown/RunStatus/RunVersion/RunGoto/RunForce 等
    面向终端的格式化操作。
*/
package migration
