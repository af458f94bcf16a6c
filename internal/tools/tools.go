package tools

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the wallet MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var toolListContacts = mcp.NewTool("list_contacts",
	mcp.WithDescription("List all saved contacts with their id, name and Ethereum address."),
)

var toolAddContact = mcp.NewTool("add_contact",
	mcp.WithDescription(
		"Save a new contact. The address is validated and stored in its "+
			"checksummed form. Fails if a contact with the same name already exists."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Contact name, unique among contacts")),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Ethereum address of the contact (0x-prefixed hex)")),
)

var toolDeleteContact = mcp.NewTool("delete_contact",
	mcp.WithDescription("Delete a contact by its id. Deleting an unknown id reports NOT_FOUND."),
	mcp.WithString("contact_id",
		mcp.Required(),
		mcp.Description("ID of the contact to delete, as returned by list_contacts")),
)

var toolListWallets = mcp.NewTool("list_wallets",
	mcp.WithDescription(
		"List all stored wallets with their id, name and derived address. "+
			"Secret material is never included."),
)

var toolGenerateWallet = mcp.NewTool("generate_wallet",
	mcp.WithDescription(
		"Generate a brand new wallet under the given name and store it. "+
			"Returns the seed phrase exactly once - it is not retrievable later."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Wallet name, unique among wallets")),
)

var toolAddWallet = mcp.NewTool("add_wallet",
	mcp.WithDescription(
		"Import an existing wallet from a seed phrase or hex private key. "+
			"The address is derived deterministically from the secret."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Wallet name, unique among wallets")),
	mcp.WithString("seed_phrase",
		mcp.Required(),
		mcp.Description("BIP-39 seed phrase or hex private key")),
)

var toolDeleteWallet = mcp.NewTool("delete_wallet",
	mcp.WithDescription("Delete a stored wallet by its id. Deleting an unknown id reports NOT_FOUND."),
	mcp.WithString("wallet_id",
		mcp.Required(),
		mcp.Description("ID of the wallet to delete, as returned by list_wallets")),
)

var toolGetEthBalance = mcp.NewTool("get_eth_balance",
	mcp.WithDescription("Get the ETH balance of an address, rendered in ether (not wei)."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Ethereum address to query")),
)

var toolGetTokenBalance = mcp.NewTool("get_token_balance",
	mcp.WithDescription(
		"Get the ERC20 token balance of an address, rendered using the "+
			"token's declared decimals."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Ethereum address to query")),
	mcp.WithString("token_address",
		mcp.Required(),
		mcp.Description("ERC20 token contract address")),
)

var toolListPopularTokens = mcp.NewTool("list_popular_tokens",
	mcp.WithDescription(
		"List well-known ERC20 tokens as a symbol to contract address mapping. "+
			"No network call is made."),
)

var toolTransferEth = mcp.NewTool("transfer_eth",
	mcp.WithDescription(
		"Transfer ETH using a raw private key. The key must derive the sender "+
			"address. Returns the transaction hash once broadcast; the transaction "+
			"is not awaited and cannot be withdrawn."),
	mcp.WithString("from_address",
		mcp.Required(),
		mcp.Description("Sender address")),
	mcp.WithString("to_address",
		mcp.Required(),
		mcp.Description("Recipient address")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Amount in ether as a decimal string, e.g. '0.05'")),
	mcp.WithString("private_key",
		mcp.Required(),
		mcp.Description("Hex private key of the sender")),
)

var toolSendToken = mcp.NewTool("send_token",
	mcp.WithDescription(
		"Transfer ERC20 tokens from a stored wallet, referenced by name. "+
			"Returns the transaction hash once broadcast."),
	mcp.WithString("wallet_name",
		mcp.Required(),
		mcp.Description("Name of the stored wallet to send from")),
	mcp.WithString("token_address",
		mcp.Required(),
		mcp.Description("ERC20 token contract address")),
	mcp.WithString("to_address",
		mcp.Required(),
		mcp.Description("Recipient address")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Token amount as a decimal string, e.g. '12.5'")),
)
