package dbmodels

const TABLE_USED_TOKENS = "used_tokens"
